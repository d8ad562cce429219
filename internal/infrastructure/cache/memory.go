package cache

import (
	"context"
	"sync"
	"time"

	"github.com/healthpal/backend/internal/domain"
)

// cacheItem is one cached day's snapshot with its expiration.
type cacheItem struct {
	Snapshot   domain.MetricsSnapshot
	Expiration time.Time
}

// SnapshotCache is a thread-safe in-memory cache of the last known metrics
// per calendar day. It backs the per-metric live-or-cached fallback: when a
// live fetch comes back zero for a quantity, the summary path substitutes
// the cached value for that quantity.
type SnapshotCache struct {
	data  map[string]cacheItem
	ttl   time.Duration
	mutex sync.RWMutex
}

// NewSnapshotCache creates a cache whose entries expire after ttl.
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	c := &SnapshotCache{
		data: make(map[string]cacheItem),
		ttl:  ttl,
	}

	// Sweep expired entries every 10 minutes.
	go c.cleanupExpired()

	return c
}

// dayKey normalizes a date to its local calendar day.
func dayKey(date time.Time) string {
	return date.Local().Format("2006-01-02")
}

// Get returns the cached snapshot for the given day.
func (c *SnapshotCache) Get(ctx context.Context, date time.Time) (domain.MetricsSnapshot, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[dayKey(date)]
	if !exists || time.Now().After(item.Expiration) {
		return domain.MetricsSnapshot{}, domain.ErrCacheMiss
	}
	return item.Snapshot, nil
}

// Set stores a day's snapshot, keyed by the snapshot's own date.
func (c *SnapshotCache) Set(ctx context.Context, snapshot domain.MetricsSnapshot) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[dayKey(snapshot.Date)] = cacheItem{
		Snapshot:   snapshot,
		Expiration: time.Now().Add(c.ttl),
	}
	return nil
}

// cleanupExpired removes expired entries from the cache periodically.
func (c *SnapshotCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for key, item := range c.data {
			if now.After(item.Expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}

// Size returns the current number of cached days (for debugging/monitoring).
func (c *SnapshotCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all cached snapshots.
func (c *SnapshotCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]cacheItem)
}
