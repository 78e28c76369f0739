package mocks

import (
	"context"

	"pariksha/paper-share/internal/domain"
	"pariksha/paper-share/internal/repository"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockPaperRepository struct {
	mock.Mock
}

func (m *MockPaperRepository) Create(ctx context.Context, paper *domain.Paper) (primitive.ObjectID, error) {
	args := m.Called(ctx, paper)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockPaperRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Paper, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*domain.Paper); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaperRepository) Find(ctx context.Context, filter repository.PaperFilter, sort repository.PaperSort, limit int64) ([]domain.Paper, error) {
	args := m.Called(ctx, filter, sort, limit)
	if papers, ok := args.Get(0).([]domain.Paper); ok {
		return papers, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaperRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, expected, next domain.PaperStatus, reason *string) (*domain.Paper, error) {
	args := m.Called(ctx, id, expected, next, reason)
	if p, ok := args.Get(0).(*domain.Paper); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaperRepository) IncrementDownloadCount(ctx context.Context, id primitive.ObjectID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockPaperRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaperRepository) Distinct(ctx context.Context, field string, filter repository.PaperFilter) ([]string, error) {
	args := m.Called(ctx, field, filter)
	if values, ok := args.Get(0).([]string); ok {
		return values, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaperRepository) Count(ctx context.Context, filter repository.PaperFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaperRepository) SumDownloadCounts(ctx context.Context, filter repository.PaperFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}
