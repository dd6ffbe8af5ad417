// ABOUTME: Thread-safe read-through cache with fixed time-based expiry.
// ABOUTME: Fronts slow-changing settings lookups during turn processing.

package cache

import (
	"context"
	"sync"
	"time"
)

// entry stores a cached value and the time it was fetched.
type entry struct {
	value     string
	fetchedAt time.Time
}

// Cache is a thread-safe read-through cache for string values with a
// fixed TTL. A miss invokes the supplied fetch function and stores the
// result. Concurrent misses for the same key may each invoke the fetch;
// there is no single-flight coordination, which keeps the design simple
// at the cost of redundant fetches under contention.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	done    chan struct{}
	closed  bool
}

// New creates a cache with the given TTL. A background goroutine
// periodically sweeps expired entries.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go c.sweep()
	return c
}

// FetchFunc loads a value from the underlying source on a cache miss.
type FetchFunc func(ctx context.Context) (string, error)

// GetOrFetch returns the cached value for key, fetching and storing it on
// a miss or after expiry. Fetch errors are returned to the caller and
// nothing is cached for the key.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch FetchFunc) (string, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && time.Since(e.fetchedAt) < c.ttl {
		return e.value, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.entries[key] = &entry{value: value, fetchedAt: time.Now()}
	c.mu.Unlock()

	return value, nil
}

// Invalidate drops the cached value for key, forcing the next read to
// fetch from the source.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// sweep runs in a background goroutine, periodically removing expired
// entries so long-lived processes do not accumulate dead keys.
func (c *Cache) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.runSweep()
		case <-c.done:
			return
		}
	}
}

func (c *Cache) runSweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.Sub(e.fetchedAt) > c.ttl {
			delete(c.entries, key)
		}
	}
}

// Close stops the background sweep goroutine. It is safe to call multiple times.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}
