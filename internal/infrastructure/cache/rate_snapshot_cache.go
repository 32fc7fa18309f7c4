package cache

import (
	"sync"
	"time"

	"github.com/damon-houk/travel-budget-tracker/internal/domain/entity"
)

// CacheEntry is a cached snapshot and the time it was stored
type CacheEntry struct {
	Snapshot  *entity.RateSnapshot
	Timestamp time.Time
}

// RateSnapshotCache keeps the latest provider snapshot per base currency per calendar day.
// It is safe for concurrent use.
type RateSnapshotCache struct {
	entries    map[string]CacheEntry
	expiration time.Duration
	now        func() time.Time
	mutex      sync.RWMutex
}

// NewRateSnapshotCache creates a cache whose entries expire after ttl
func NewRateSnapshotCache(ttl time.Duration) *RateSnapshotCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RateSnapshotCache{
		entries:    make(map[string]CacheEntry),
		expiration: ttl,
		now:        time.Now,
	}
}

// cacheKey combines the base currency with the local calendar day of the request
func cacheKey(base string, day time.Time) string {
	return base + ":" + day.Format("2006-01-02")
}

// Get returns the snapshot stored for base on day, or nil when absent or expired
func (c *RateSnapshotCache) Get(base string, day time.Time) *entity.RateSnapshot {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, ok := c.entries[cacheKey(base, day)]
	if !ok || c.now().Sub(entry.Timestamp) > c.expiration {
		return nil
	}
	return entry.Snapshot
}

// Put stores snap for its base currency on day
func (c *RateSnapshotCache) Put(snap *entity.RateSnapshot, day time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[cacheKey(snap.Base, day)] = CacheEntry{
		Snapshot:  snap,
		Timestamp: c.now(),
	}
}

// Size returns the number of entries, expired ones included
func (c *RateSnapshotCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.entries)
}

// CleanExpired removes expired entries and returns how many were dropped
func (c *RateSnapshotCache) CleanExpired() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	count := 0
	now := c.now()
	for key, entry := range c.entries {
		if now.Sub(entry.Timestamp) > c.expiration {
			delete(c.entries, key)
			count++
		}
	}
	return count
}
