package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRequestLimit is the proxy's per-client budget per window.
const DefaultRequestLimit = 50

// RateLimiter is a fixed-window counter per client key. The first request in
// a window creates the counter with an expiry; the window resets when the key
// expires rather than sliding.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window}
}

// Allow records one request for the client and reports whether it is within
// the window's budget.
func (l *RateLimiter) Allow(ctx context.Context, clientKey string) (bool, error) {
	key := "ratelimit:" + clientKey

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit check for %q: %w", clientKey, err)
	}

	return incr.Val() <= l.limit, nil
}
