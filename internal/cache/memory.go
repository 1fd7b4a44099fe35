package cache

import (
	"context"
	"sync"
	"time"

	"github.com/selivandex/ticker-sentiment/pkg/models"
)

// MemoryCache is an in-process ResultCache. Expired entries are treated as
// absent on read and dropped by Sweep.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates a cache with the given TTL (DefaultTTL when <= 0)
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached result if it is still fresh
func (c *MemoryCache) Get(_ context.Context, ticker string) (*models.AggregationResult, bool) {
	c.mu.RLock()
	e, ok := c.entries[Key(ticker)]
	c.mu.RUnlock()

	if !ok || !e.fresh(c.now(), c.ttl) {
		return nil, false
	}
	return e.Value, true
}

// Put stores a result, replacing any previous entry for the ticker
func (c *MemoryCache) Put(_ context.Context, ticker string, result *models.AggregationResult) {
	if result == nil {
		return
	}

	c.mu.Lock()
	c.entries[Key(ticker)] = entry{Value: result, CreatedAt: c.now()}
	c.mu.Unlock()
}

// Sweep removes expired entries and returns how many were dropped
func (c *MemoryCache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if !e.fresh(now, c.ttl) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired ones included
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
