// Package infra provides shared infrastructure used by the outer surfaces
// of the engine: a TTL cache for composite reports and a token-bucket
// limiter for rate-limited data sources.
package infra

import (
	"sync"
	"time"
)

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a thread-safe in-memory cache with a default TTL.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry[V]
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache with the given default TTL. A non-positive TTL
// disables caching: Set becomes a no-op.
func NewCache[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]cacheEntry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (c *Cache[V]) WithClock(now func() time.Time) *Cache[V] {
	c.now = now
	return c
}

// Get retrieves a live value.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(entry.expiresAt) {
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Set stores a value with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry[V]{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Invalidate removes a key.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Flush removes all entries.
func (c *Cache[V]) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry[V])
	c.mu.Unlock()
}

// Cleanup removes expired entries and returns how many were dropped.
func (c *Cache[V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for k, v := range c.entries {
		if !now.Before(v.expiresAt) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
