// Package cache holds the redis-backed edge cache and the shared counter
// backend for rate limiting. Everything here is best-effort: the cache is an
// optimization, never a source of truth, and its failures must not fail the
// primary read or write path.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"waypost/internal/domain/area"
)

const detailsKeyPrefix = "area-details"

// DetailsCache is a read-through, TTL-based cache of assembled area detail
// responses, keyed by (areaType, areaId).
type DetailsCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewDetailsCache creates a new details cache
func NewDetailsCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *DetailsCache {
	return &DetailsCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func detailsKey(t area.Type, id string) string {
	return fmt.Sprintf("%s:%s:%s", detailsKeyPrefix, t, id)
}

// Get returns the cached entry, or nil on miss or on any backend error.
func (c *DetailsCache) Get(ctx context.Context, t area.Type, id string) *area.Details {
	data, err := c.client.Get(ctx, detailsKey(t, id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("details cache read failed",
				zap.String("areaType", string(t)),
				zap.String("areaId", id),
				zap.Error(err))
		}
		return nil
	}

	var details area.Details
	if err := json.Unmarshal(data, &details); err != nil {
		c.log.Warn("details cache entry corrupt, dropping",
			zap.String("areaId", id),
			zap.Error(err))
		c.Invalidate(ctx, t, id)
		return nil
	}

	return &details
}

// Set writes the entry with the configured TTL. Errors are logged and
// swallowed.
func (c *DetailsCache) Set(ctx context.Context, t area.Type, id string, details *area.Details) {
	data, err := json.Marshal(details)
	if err != nil {
		c.log.Warn("details cache marshal failed", zap.String("areaId", id), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, detailsKey(t, id), data, c.ttl).Err(); err != nil {
		c.log.Warn("details cache write failed",
			zap.String("areaType", string(t)),
			zap.String("areaId", id),
			zap.Error(err))
	}
}

// Invalidate removes the entry. Called synchronously by every mutation
// before its response is returned; a failure is logged but cannot fail the
// mutation.
func (c *DetailsCache) Invalidate(ctx context.Context, t area.Type, id string) {
	if err := c.client.Del(ctx, detailsKey(t, id)).Err(); err != nil {
		c.log.Warn("details cache invalidation failed",
			zap.String("areaType", string(t)),
			zap.String("areaId", id),
			zap.Error(err))
	}
}
