package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestResultsCacheRoundTrip(t *testing.T) {
	_, client := setupRedis(t)
	c := NewResultsCache(client)
	ctx := context.Background()

	key := RaceListKey(2025, 1)
	payload := []byte(`[{"race_id": 5546}]`)

	_, err := c.Get(ctx, key)
	assert.True(t, errors.Is(err, ErrCacheMiss))

	require.NoError(t, c.Set(ctx, key, payload, RaceListTTL))

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestResultsCacheExpiry(t *testing.T) {
	mr, client := setupRedis(t)
	c := NewResultsCache(client)
	ctx := context.Background()

	key := RaceDetailKey(2025, 1, 5546)
	require.NoError(t, c.Set(ctx, key, []byte(`{}`), RaceDetailTTL))

	mr.FastForward(RaceDetailTTL + time.Second)

	_, err := c.Get(ctx, key)
	assert.True(t, errors.Is(err, ErrCacheMiss))
}

func TestRateLimiterWithinBudget(t *testing.T) {
	_, client := setupRedis(t)
	limiter := NewRateLimiter(client, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed, "request past the limit should be denied")
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	_, client := setupRedis(t)
	limiter := NewRateLimiter(client, 1, time.Minute)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, allowed, "second client has its own window")
}

func TestRateLimiterWindowReset(t *testing.T) {
	mr, client := setupRedis(t)
	limiter := NewRateLimiter(client, 1, time.Minute)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	mr.FastForward(61 * time.Second)

	allowed, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed, "new window starts after expiry")
}
