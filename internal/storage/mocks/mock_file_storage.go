package mocks

import (
	"context"
	"io"

	"pariksha/paper-share/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, body, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockFileStorage) Delete(ctx context.Context, fileURL string) storage.DeleteResult {
	args := m.Called(ctx, fileURL)
	return args.Get(0).(storage.DeleteResult)
}
