// Package cache memoizes catalog lookups by input value.
//
// A Cache keeps every value it has produced in memory for its lifetime and can
// optionally read through to a Backend so that results survive across runs.
// Each key is written at most once; fetch errors are never cached.
package cache

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/rmax-ai/collabgraph/pkg/logger"
)

// Backend persists encoded values outside the process.
type Backend interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Set(ctx context.Context, namespace, key string, value []byte) error
}

// Cache is a namespaced read-through memo table.
type Cache struct {
	namespace string
	backend   Backend
	log       *zap.Logger

	mu      sync.Mutex
	entries map[string]any
}

// Option configures a Cache.
type Option func(*Cache)

// WithBackend makes the cache read through to b.
func WithBackend(b Backend) Option {
	return func(c *Cache) { c.backend = b }
}

// WithLogger sets the logger used for backend failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) { c.log = logger.OrNop(l) }
}

// New creates an empty cache for namespace.
func New(namespace string, opts ...Option) *Cache {
	c := &Cache{
		namespace: namespace,
		log:       zap.NewNop(),
		entries:   make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Namespace returns the cache namespace.
func (c *Cache) Namespace() string {
	return c.namespace
}

// Len returns the number of memoized keys.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Has reports whether key is memoized in memory.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func (c *Cache) load(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// store records v unless key already has a value, and returns the value that
// ended up in the table.
func (c *Cache) store(key string, v any) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing
	}
	c.entries[key] = v
	return v
}

// GetOrFetch returns the memoized value for key, consulting the backend and
// finally calling fetch on a miss.
func GetOrFetch[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := c.load(key); ok {
		if typed, ok := v.(T); ok {
			cacheLookups.WithLabelValues(c.namespace, "hit").Inc()
			return typed, nil
		}
		var zero T
		return zero, errors.Newf("cache %s: key %q holds %T", c.namespace, key, v)
	}

	if c.backend != nil {
		data, found, err := c.backend.Get(ctx, c.namespace, key)
		if err != nil {
			c.log.Warn("cache_backend_get_failed", zap.String("namespace", c.namespace), zap.String("key", key), zap.Error(err))
		} else if found {
			var v T
			if err := json.Unmarshal(data, &v); err != nil {
				c.log.Warn("cache_backend_decode_failed", zap.String("namespace", c.namespace), zap.String("key", key), zap.Error(err))
			} else {
				cacheLookups.WithLabelValues(c.namespace, "backend_hit").Inc()
				return storeTyped(c, key, v), nil
			}
		}
	}

	cacheLookups.WithLabelValues(c.namespace, "miss").Inc()
	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	stored := storeTyped(c, key, v)

	if c.backend != nil {
		data, err := json.Marshal(stored)
		if err == nil {
			err = c.backend.Set(ctx, c.namespace, key, data)
		}
		if err != nil {
			c.log.Warn("cache_backend_set_failed", zap.String("namespace", c.namespace), zap.String("key", key), zap.Error(err))
		}
	}
	return stored, nil
}

func storeTyped[T any](c *Cache, key string, v T) T {
	if stored, ok := c.store(key, v).(T); ok {
		return stored
	}
	return v
}
