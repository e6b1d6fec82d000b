package cache

import "sync"

// Stats is a point-in-time view of a cache's counters.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

// Cache is a mutex-guarded map from K to V. The zero value is not usable;
// create caches with New.
//
// Every method is safe for concurrent use. The lock is never held while a
// loader runs, so two concurrent misses for the same key may both load.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]V
	hits    int64
	misses  int64
	// gen advances on every invalidation so a Load that started before the
	// invalidation does not store what is now stale data.
	gen uint64
}

// New creates an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]V)}
}

// Get returns the cached value for key and records a hit or a miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Peek returns the cached value without touching the counters.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Set stores value under key.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// Generation returns the invalidation counter. Pass it to SetIfCurrent to
// store a value only when nothing was invalidated since it was read.
func (c *Cache[K, V]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetIfCurrent stores value under key unless an invalidation happened after
// gen was obtained. It reports whether the value was stored.
func (c *Cache[K, V]) SetIfCurrent(gen uint64, key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.entries[key] = value
	return true
}

// Load returns the cached value for key, calling load on a miss and caching
// its result. Errors from load are returned and nothing is cached.
func (c *Cache[K, V]) Load(key K, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	gen := c.Generation()
	v, err := load()
	if err != nil {
		var zero V
		return zero, err
	}
	c.SetIfCurrent(gen, key, v)
	return v, nil
}

// Delete removes the given keys. Missing keys are ignored.
func (c *Cache[K, V]) Delete(keys ...K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	for _, k := range keys {
		delete(c.entries, k)
	}
}

// DeleteFunc removes every entry for which del returns true and reports how
// many were removed. del runs under the cache lock and must not call back
// into the cache.
func (c *Cache[K, V]) DeleteFunc(del func(K, V) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	n := 0
	for k, v := range c.entries {
		if del(k, v) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Clear drops every entry. Counters are kept.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	clear(c.entries)
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the current counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Size: len(c.entries)}
}
