package storage

import (
	"context"
	"io"
)

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// Upload writes an object under the given key and returns the durable
	// public locator under which it can be retrieved.
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)

	// Delete removes the object behind a locator previously returned by
	// Upload. It never returns a Go error; every outcome, including an
	// unresolvable key, is reported through the DeleteResult so callers
	// can proceed with their own cleanup regardless.
	Delete(ctx context.Context, fileURL string) DeleteResult
}

// DeleteResult reports the outcome of a blob deletion attempt.
type DeleteResult struct {
	Deleted bool   `json:"deleted"`
	Key     string `json:"key,omitempty"`   // object key the attempt resolved, if any
	Error   string `json:"error,omitempty"` // failure detail, empty on success
}
