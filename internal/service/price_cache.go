package service

import (
	"context"
	"sync"
	"time"

	"github.com/ordonezjosue/wheeltracker/internal/yahoo"
)

// PriceCache serves current underlying prices through a bounded TTL cache.
// Repeated lookups within the TTL window return the cached value, stale or
// not, instead of re-fetching. Lookup failures degrade to a nil price and
// are cached like any other result so a flapping upstream is not hammered.
type PriceCache struct {
	client     yahoo.Client
	ttl        time.Duration
	maxEntries int

	mu      sync.Mutex
	entries map[string]priceEntry
}

type priceEntry struct {
	price     *float64
	fetchedAt time.Time
}

// DefaultPriceCacheSize bounds the cache to roughly the number of distinct
// tickers a personal journal sees.
const DefaultPriceCacheSize = 128

// NewPriceCache creates a price cache over the given lookup client.
func NewPriceCache(client yahoo.Client, ttl time.Duration) *PriceCache {
	return &PriceCache{
		client:     client,
		ttl:        ttl,
		maxEntries: DefaultPriceCacheSize,
		entries:    make(map[string]priceEntry),
	}
}

// GetCurrentPrice returns the last observed price for a ticker, or nil when
// no price could be obtained. The advisory price never blocks a journal
// operation: errors are swallowed into nil.
func (c *PriceCache) GetCurrentPrice(ctx context.Context, ticker string) *float64 {
	c.mu.Lock()
	if e, ok := c.entries[ticker]; ok && time.Since(e.fetchedAt) < c.ttl {
		c.mu.Unlock()
		return e.price
	}
	c.mu.Unlock()

	var price *float64
	if v, err := c.client.GetCurrentPrice(ctx, ticker); err == nil {
		price = &v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[ticker] = priceEntry{price: price, fetchedAt: time.Now()}
	return price
}

func (c *PriceCache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.fetchedAt.Before(oldest) {
			oldestKey = k
			oldest = e.fetchedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
