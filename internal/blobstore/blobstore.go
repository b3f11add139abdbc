package blobstore

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("blob not found")

// Store persists named byte blobs.
type Store interface {
	// Put writes r under key and returns the number of bytes stored. An
	// existing blob with the same key is an error.
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
