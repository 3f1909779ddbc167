package cache

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"product-scout/internal/clock"
	"product-scout/internal/domain"
	"product-scout/internal/snapshot"
)

const (
	DefaultTTL = 24 * time.Hour

	cacheSnapshotName = "ebay_cache"
)

// TTLCache maps raw keywords to price summaries. An entry is valid only
// while now-StoredAt < ttl; expired entries are evicted when read.
type TTLCache struct {
	mu      sync.Mutex
	clock   clock.Clock
	ttl     time.Duration
	entries map[string]domain.CacheEntry
}

func NewTTLCache(clk clock.Clock, ttl time.Duration) *TTLCache {
	if clk == nil {
		clk = clock.Real{}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTLCache{
		clock:   clk,
		ttl:     ttl,
		entries: make(map[string]domain.CacheEntry),
	}
}

func (c *TTLCache) Get(key string) (domain.PriceSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return domain.PriceSummary{}, false
	}
	if c.clock.Now().Sub(entry.StoredAt) >= c.ttl {
		delete(c.entries, key)
		return domain.PriceSummary{}, false
	}
	return entry.Value, true
}

func (c *TTLCache) Set(key string, value domain.PriceSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = domain.CacheEntry{Value: value, StoredAt: c.clock.Now()}
}

// Len counts stored entries, including expired ones not yet evicted.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *TTLCache) TTL() time.Duration {
	return c.ttl
}

// Load replaces the cache contents with the stored snapshot. Any failure
// leaves the cache empty; a missing snapshot is not an error.
func (c *TTLCache) Load(ctx context.Context, store snapshot.Store) error {
	loaded := make(map[string]domain.CacheEntry)
	err := store.Load(ctx, cacheSnapshotName, &loaded)

	c.mu.Lock()
	defer c.mu.Unlock()

	if errors.Is(err, snapshot.ErrNotFound) {
		c.entries = make(map[string]domain.CacheEntry)
		return nil
	}
	if err != nil {
		c.entries = make(map[string]domain.CacheEntry)
		return err
	}
	if loaded == nil {
		loaded = make(map[string]domain.CacheEntry)
	}
	c.entries = loaded
	log.Printf("Loaded %d cached items", len(loaded))
	return nil
}

func (c *TTLCache) Save(ctx context.Context, store snapshot.Store) error {
	c.mu.Lock()
	copied := make(map[string]domain.CacheEntry, len(c.entries))
	for k, v := range c.entries {
		copied[k] = v
	}
	c.mu.Unlock()

	return store.Save(ctx, cacheSnapshotName, copied)
}
