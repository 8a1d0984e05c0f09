package markets

import (
	"context"
	"sync"
	"time"

	"github.com/adjacent-research/news-api/internal/models"
)

// Fetcher is the subset of Source the cache needs.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]models.MarketRecord, error)
}

// Cache keeps the latest dataset snapshot and refetches once the TTL lapses.
// Concurrent callers inside the TTL window share one snapshot; a stale
// snapshot is refetched by whichever caller arrives first while the rest
// wait on the mutex.
type Cache struct {
	mu        sync.Mutex
	source    Fetcher
	ttl       time.Duration
	snapshot  []models.MarketRecord
	fetchedAt time.Time
}

// NewCache wraps a Fetcher with snapshot caching.
func NewCache(source Fetcher, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{source: source, ttl: ttl}
}

// Records returns the cached snapshot, refetching it when expired or absent.
func (c *Cache) Records(ctx context.Context) ([]models.MarketRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil && time.Since(c.fetchedAt) <= c.ttl {
		return c.snapshot, nil
	}

	records, err := c.source.FetchAll(ctx)
	if err != nil {
		// Serve the stale snapshot rather than failing the request.
		if c.snapshot != nil {
			return c.snapshot, nil
		}
		return nil, err
	}

	c.snapshot = records
	c.fetchedAt = time.Now()
	return c.snapshot, nil
}
