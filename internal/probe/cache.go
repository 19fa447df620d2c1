package probe

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// entry is one cached probe result.
type entry[T any] struct {
	value T
	at    time.Time
}

// cache pairs a TTL map with in-flight deduplication: at most one
// outstanding probe per key at a time, and concurrent callers attach to the
// pending outcome instead of issuing duplicates.
type cache[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry[T]
	flight  singleflight.Group
}

func newCache[T any](ttl time.Duration) *cache[T] {
	return &cache[T]{ttl: ttl, entries: make(map[string]entry[T])}
}

// get returns the cached value when still within the TTL.
func (c *cache[T]) get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || time.Since(e.at) >= c.ttl {
		var zero T
		return zero, false
	}
	return e.value, true
}

// do returns a fresh cached value, attaches to an in-flight probe for the
// same key, or runs fn. Only successes are cached: a failure surfaces as
// ok=false and the next caller retries immediately instead of seeing the
// failure frozen for a full TTL window. The in-flight slot is freed once fn
// settles, whatever the outcome.
func (c *cache[T]) do(key string, fn func() (T, error)) (T, bool) {
	if v, ok := c.get(key); ok {
		return v, true
	}
	v, err, _ := c.flight.Do(key, func() (interface{}, error) {
		// A probe may have settled between the miss and joining the group.
		if v, ok := c.get(key); ok {
			return v, nil
		}
		v, err := fn()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = entry[T]{value: v, at: time.Now()}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// clear drops every cached entry. Probes already in flight are not
// cancelled; their results repopulate the cache when they settle, which a
// later caller may find fresh again (stale-but-bounded, accepted).
func (c *cache[T]) clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[T])
	c.mu.Unlock()
}

// clearOnly drops the entries for the given keys and keeps the rest.
func (c *cache[T]) clearOnly(keys []string) {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.mu.Unlock()
}

// len reports the number of cached entries, fresh or not.
func (c *cache[T]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
