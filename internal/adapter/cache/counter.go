package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter implements fixed-window counting on the shared redis backend,
// in a keyspace logically separate from the details cache.
type Counter struct {
	client *redis.Client
}

// NewCounter creates a new counter backend
func NewCounter(client *redis.Client) *Counter {
	return &Counter{client: client}
}

// Incr bumps the window counter, setting the expiry when the window opens,
// and returns the count after the increment. INCR and EXPIRE run in one
// pipeline so a crash between them cannot leave an immortal counter.
func (c *Counter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	return incr.Val(), nil
}
