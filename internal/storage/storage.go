package storage

import (
	"context"
	"io"
)

// ObjectStore abstracts where uploaded document bytes live. Keys are
// opaque to callers and persisted on the document row.
type ObjectStore interface {
	// Save stores the reader's content under a new key scoped to the
	// user and returns the key and the number of bytes written.
	Save(ctx context.Context, userID, name string, r io.Reader) (string, int64, error)

	// Open returns the stored content for a key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the stored content for a key.
	Delete(ctx context.Context, key string) error
}
