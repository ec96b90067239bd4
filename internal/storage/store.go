// Package storage defines the interfaces for a blob storage backend.
// This abstraction keeps the ingest pipeline independent of a specific
// implementation (Google Cloud Storage, the local filesystem, or memory).
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound signals that the requested object does not exist.
var ErrNotFound = errors.New("object not found")

// BlobStore is the common interface for key-addressed blob persistence.
type BlobStore interface {
	// PutObject uploads data to the given key and returns a backend URI.
	// Keys are deterministic, so a retried write overwrites rather than duplicates.
	PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error)

	// GetObject reads the full object at the given key, or ErrNotFound.
	GetObject(ctx context.Context, path string) ([]byte, error)
}
