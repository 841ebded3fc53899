// Package cache provides the TTL+LRU cache used by the three spec-mandated
// caches: the ZK circuit compiler cache (§4.4), the relationship
// path-query cache (§4.2) and the log segment cache (§4.6). It replaces a
// hand-rolled map+mutex cache with golang-lru's expirable LRU, a teacher
// dependency that had no caller in the retrieved source.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// Config controls eviction behavior shared by all three cache instances.
type Config struct {
	MaxEntries int
	TTL        time.Duration
}

// DefaultConfig mirrors infrastructure/config's CacheConfig defaults.
func DefaultConfig() Config {
	return Config{MaxEntries: 1000, TTL: 5 * time.Minute}
}

// Stats are hit/miss/eviction counters the cache keeps itself (Get counts
// hits and misses, the eviction callback counts evictions); the cache
// stays metrics-agnostic so infrastructure/metrics can wire
// per-subsystem counters around it without this package importing
// infrastructure/metrics.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is a generic TTL+LRU cache: entries are evicted on whichever comes
// first, TTL expiry or LRU pressure past MaxEntries.
type Cache[K comparable, V any] struct {
	lru   *lru.LRU[K, V]
	stats Stats
}

// New constructs a Cache with the given config. onEvict, if non-nil, is
// called synchronously whenever an entry is evicted for any reason.
func New[K comparable, V any](cfg Config, onEvict func(key K, value V)) *Cache[K, V] {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1000
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	c := &Cache[K, V]{}
	c.lru = lru.NewLRU[K, V](cfg.MaxEntries, func(key K, value V) {
		c.stats.Evictions++
		if onEvict != nil {
			onEvict(key, value)
		}
	}, cfg.TTL)
	return c
}

// Get returns the cached value for key, tracking a hit or miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	return v, ok
}

// Peek returns the cached value without affecting recency or stats.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	return c.lru.Peek(key)
}

// Set inserts or updates key, evicting the least-recently-used entry if
// the cache is at capacity.
func (c *Cache[K, V]) Set(key K, value V) {
	c.lru.Add(key, value)
}

// Remove evicts key if present, invoking the eviction callback.
func (c *Cache[K, V]) Remove(key K) bool {
	return c.lru.Remove(key)
}

// RemoveMatching evicts every key for which match returns true.
func (c *Cache[K, V]) RemoveMatching(match func(key K) bool) int {
	removed := 0
	for _, key := range c.lru.Keys() {
		if match(key) {
			c.lru.Remove(key)
			removed++
		}
	}
	return removed
}

// Purge removes all entries.
func (c *Cache[K, V]) Purge() {
	c.lru.Purge()
}

// Len returns the current number of live entries.
func (c *Cache[K, V]) Len() int {
	return c.lru.Len()
}

// Stats returns a snapshot of hit/miss/eviction counters.
func (c *Cache[K, V]) Stats() Stats {
	return c.stats
}
