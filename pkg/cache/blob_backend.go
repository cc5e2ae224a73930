package cache

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"path"

	"github.com/cockroachdb/errors"

	"github.com/rmax-ai/collabgraph/pkg/blob"
)

// BlobBackend stores cache entries as JSON files in a blob store, one file
// per key under cache/<namespace>/.
type BlobBackend struct {
	store blob.Store
}

// NewBlobBackend wraps store.
func NewBlobBackend(store blob.Store) *BlobBackend {
	return &BlobBackend{store: store}
}

func blobKey(namespace, key string) string {
	sum := sha1.Sum([]byte(key))
	return path.Join("cache", namespace, hex.EncodeToString(sum[:])+".json")
}

func (b *BlobBackend) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	r, err := b.store.Get(ctx, blobKey(namespace, key))
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, false, errors.Wrapf(err, "read cache entry %s/%s", namespace, key)
	}
	return data, true, nil
}

func (b *BlobBackend) Set(ctx context.Context, namespace, key string, value []byte) error {
	return b.store.Put(ctx, blobKey(namespace, key), bytes.NewReader(value))
}
