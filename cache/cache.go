// Package cache holds the Redis-backed components of the results proxy:
// a TTL cache for feed payloads and a fixed-window rate limiter.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when no entry exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// Feed payload TTLs. The race list churns while a season is in progress;
// a finished race's detail feed is effectively immutable.
const (
	RaceListTTL   = 10 * time.Minute
	RaceDetailTTL = time.Hour
)

// ResultsCache stores raw feed payloads keyed by request shape.
type ResultsCache struct {
	client *redis.Client
}

func NewResultsCache(client *redis.Client) *ResultsCache {
	return &ResultsCache{client: client}
}

func (c *ResultsCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("cache get %q: %w", key, err)
	}
	return data, nil
}

func (c *ResultsCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

// RaceListKey builds the cache key for a season race list payload.
func RaceListKey(season, seriesID int) string {
	return fmt.Sprintf("racelist:%d:%d", season, seriesID)
}

// RaceDetailKey builds the cache key for a weekend feed payload.
func RaceDetailKey(season, seriesID, raceID int) string {
	return fmt.Sprintf("racedetail:%d:%d:%d", season, seriesID, raceID)
}
