package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

// ResultCache stores live classifications by website key so reruns do not
// spend backend quota on sites that were already classified.
type ResultCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewResultCache creates a cache on client. A zero TTL keeps entries forever.
func NewResultCache(client *Client) *ResultCache {
	return &ResultCache{rdb: client.rdb, ttl: client.ttl}
}

// Get returns the cached classification for websiteKey.
func (c *ResultCache) Get(ctx context.Context, websiteKey string) (domain.Classification, bool, error) {
	data, err := c.rdb.Get(ctx, cacheKey(websiteKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Classification{}, false, nil
	}
	if err != nil {
		return domain.Classification{}, false, fmt.Errorf("failed to get cached classification: %w", err)
	}

	var cl domain.Classification
	if err := json.Unmarshal(data, &cl); err != nil {
		// Corrupt entry, drop it and classify again
		c.rdb.Del(ctx, cacheKey(websiteKey))
		return domain.Classification{}, false, nil
	}
	return cl, true, nil
}

// Put caches cl. Degraded results are never cached.
func (c *ResultCache) Put(ctx context.Context, websiteKey string, cl domain.Classification) error {
	if cl.Degraded || websiteKey == "" {
		return nil
	}

	data, err := json.Marshal(cl)
	if err != nil {
		return fmt.Errorf("failed to marshal classification: %w", err)
	}
	if err := c.rdb.Set(ctx, cacheKey(websiteKey), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache classification: %w", err)
	}
	return nil
}

// Invalidate removes the cached entry for websiteKey so the next run
// classifies it again.
func (c *ResultCache) Invalidate(ctx context.Context, websiteKey string) error {
	if err := c.rdb.Del(ctx, cacheKey(websiteKey)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate classification: %w", err)
	}
	return nil
}
