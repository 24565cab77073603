package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("stored file not found")

// Storage holds uploaded application attachments.
// Supports the local filesystem and S3.
type Storage interface {
	// Save writes the content under key and returns the path to record on
	// the application.
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)

	// Open returns the content stored under key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists checks if a file exists and returns its size
	Exists(ctx context.Context, key string) (exists bool, size int64, err error)

	// Delete removes a file given the path returned by Save. Missing files are not an error.
	Delete(ctx context.Context, path string) error
}
