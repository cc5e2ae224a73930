package catalog

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrCatalogUnavailable marks transient failures of an external catalog:
	// transport errors, 5xx and 429 responses after retries, undecodable bodies.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrArtistNotFound marks a search that yielded no match.
	ErrArtistNotFound = errors.New("artist not found")
)

// Unavailable wraps err with context and marks it as ErrCatalogUnavailable.
func Unavailable(err error, format string, args ...interface{}) error {
	if err == nil {
		err = errors.Newf(format, args...)
	} else {
		err = errors.Wrapf(err, format, args...)
	}
	return errors.Mark(err, ErrCatalogUnavailable)
}

// NotFound returns an ErrArtistNotFound error naming the artist.
func NotFound(name string) error {
	return errors.Wrapf(ErrArtistNotFound, "%q", name)
}
