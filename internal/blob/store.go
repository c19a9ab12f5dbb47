package blob

import (
	"context"
	"io"
)

// Store abstracts the external blob storage attachments are written to.
// The service desk persists only the returned storage key; bytes live
// behind this interface.
type Store interface {
	// Put writes the content under key and returns the stored reference.
	Put(ctx context.Context, key string, content io.Reader) (string, error)
	// Open returns a reader over a previously stored blob.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Remove deletes a stored blob. Removing a missing key is an error.
	Remove(ctx context.Context, key string) error
}
