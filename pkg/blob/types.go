package blob

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
)

// ErrNotFound is returned by Get and Delete when the key does not exist.
var ErrNotFound = errors.New("blob not found")

// Store is a flat key/value byte store. Keys are slash-separated relative
// paths.
type Store interface {
	// Put writes content under key, replacing any previous value.
	Put(ctx context.Context, key string, reader io.Reader) error

	// Get opens the content stored under key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// List returns the keys under prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes key.
	Delete(ctx context.Context, key string) error
}
