package market

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long an aggregated stats entry stays fresh.
const DefaultCacheTTL = time.Hour

// DefaultCacheMaxEntries bounds cache growth in a long-running process. When
// the cap is reached the oldest entry is evicted.
const DefaultCacheMaxEntries = 256

type cacheEntry struct {
	stats    Stats
	storedAt time.Time
}

// StatsCache is a thread-safe, TTL-bounded cache of market stats keyed by
// normalized query. Expiry is checked at read time; there is no background
// sweeper.
type StatsCache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewStatsCache creates a cache with the given TTL and entry cap. Zero values
// select the defaults.
func NewStatsCache(ttl time.Duration, maxEntries int) *StatsCache {
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	if maxEntries == 0 {
		maxEntries = DefaultCacheMaxEntries
	}
	return &StatsCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the cached stats for key if present and younger than the TTL.
func (c *StatsCache) Get(key string) (Stats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.storedAt) >= c.ttl {
		return Stats{}, false
	}
	return entry.stats, true
}

// Put stores stats under key, evicting the oldest entry when the cap is
// reached.
func (c *StatsCache) Put(key string, stats Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[key] = cacheEntry{stats: stats, storedAt: c.now()}
}

// Len returns the number of stored entries, expired or not.
func (c *StatsCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *StatsCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for key, entry := range c.entries {
		if first || entry.storedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.storedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
