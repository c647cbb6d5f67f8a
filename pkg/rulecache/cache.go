// Package rulecache provides the time-boxed cache that sits in front of
// expensive loads like settings compilation.
package rulecache

import (
	"context"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"
)

// DefaultSnapshotTTL is the recommended TTL for rule table snapshots.
const DefaultSnapshotTTL = 5 * time.Minute

// Loader produces a fresh value when the cache is cold or expired.
type Loader[T any] func(ctx context.Context) (T, error)

// Cache is a single-value TTL cache. The check-then-fill sequence is guarded
// by a mutex so racing callers neither double-load nor observe a torn value.
type Cache[T any] struct {
	mu       sync.Mutex
	ttl      time.Duration
	value    T
	loadedAt time.Time
	loaded   bool
	logger   ectologger.Logger
}

// New creates a cache. ttl <= 0 falls back to DefaultSnapshotTTL.
func New[T any](ttl time.Duration, logger ectologger.Logger) *Cache[T] {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &Cache[T]{
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached value while fresh, otherwise invokes the loader.
// Loader failures never poison the cache: the last good value is returned
// when one exists, the zero value otherwise.
func (c *Cache[T]) Get(ctx context.Context, loader Loader[T]) T {
	value, _ := c.get(ctx, loader, false)
	return value
}

// GetStrict behaves like Get but propagates a loader failure when there is no
// prior good value to fall back on.
func (c *Cache[T]) GetStrict(ctx context.Context, loader Loader[T]) (T, error) {
	return c.get(ctx, loader, true)
}

func (c *Cache[T]) get(ctx context.Context, loader Loader[T], strict bool) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded && time.Since(c.loadedAt) < c.ttl {
		return c.value, nil
	}

	fresh, err := loader(ctx)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("Cache loader failed")
		if c.loaded {
			return c.value, nil
		}
		var zero T
		if strict {
			return zero, err
		}
		return zero, nil
	}

	c.value = fresh
	c.loadedAt = time.Now()
	c.loaded = true
	return c.value, nil
}

// Invalidate forces the next Get to reload regardless of age.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
}

// LoadedAt returns the timestamp of the current value, zero when cold.
func (c *Cache[T]) LoadedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return time.Time{}
	}
	return c.loadedAt
}
