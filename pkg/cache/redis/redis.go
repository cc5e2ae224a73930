// Package redis provides a Redis-backed cache.Backend so memoized catalog
// lookups can be shared across runs.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "collabgraph:cache"

// Backend stores cache entries as Redis strings with an optional TTL.
type Backend struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBackend wraps client. A zero ttl keeps entries until evicted.
func NewBackend(client *redis.Client, ttl time.Duration) *Backend {
	return &Backend{client: client, ttl: ttl}
}

// Dial connects to addr and verifies the connection.
func Dial(ctx context.Context, addr string, ttl time.Duration) (*Backend, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "ping redis at %s", addr)
	}
	return NewBackend(client, ttl), nil
}

func (b *Backend) makeKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, namespace, key)
}

func (b *Backend) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	data, err := b.client.Get(ctx, b.makeKey(namespace, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "redis GET %s/%s", namespace, key)
	}
	return data, true, nil
}

func (b *Backend) Set(ctx context.Context, namespace, key string, value []byte) error {
	if err := b.client.Set(ctx, b.makeKey(namespace, key), value, b.ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis SET %s/%s", namespace, key)
	}
	return nil
}

// Close closes the underlying client.
func (b *Backend) Close() error {
	return b.client.Close()
}
