package cache

import (
	"sync"
	"time"
)

// localCache is the L1 feature-cache tier: an in-memory, mutex-guarded map
// with per-entry expiry, sized and timed out per the features section's
// l1_size_mb/l1_ttl_seconds (enforced by the caller via maxEntries, since
// entry byte size varies with the cached value).
type localCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]localEntry
}

type localEntry struct {
	value     interface{}
	expiresAt time.Time
}

func newLocalCache(ttl time.Duration, maxEntries int) *localCache {
	return &localCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]localEntry),
	}
}

func (c *localCache) get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (c *localCache) set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = localEntry{value: value, expiresAt: time.Now().Add(c.ttl)}
}

// evictOneLocked drops an arbitrary entry to make room. Go map iteration
// order is randomized per run, which is sufficient for a bounded best-effort
// L1 tier backed by the optional Redis L2 for anything evicted too early.
func (c *localCache) evictOneLocked() {
	for k := range c.entries {
		delete(c.entries, k)
		return
	}
}

func (c *localCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
