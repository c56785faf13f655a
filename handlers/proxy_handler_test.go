package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racefan-dev/fantasy-chase/cache"
	"github.com/racefan-dev/fantasy-chase/metrics"
	"github.com/racefan-dev/fantasy-chase/models"
	"github.com/racefan-dev/fantasy-chase/nascar"
)

type stubFeed struct {
	races []nascar.RaceListEntry
}

func (s *stubFeed) RaceList(_ context.Context, _ int, _ models.SeriesType) ([]nascar.RaceListEntry, error) {
	return s.races, nil
}

func (s *stubFeed) WeekendFeed(_ context.Context, _ int, _ models.SeriesType, _ int) (*nascar.WeekendFeed, error) {
	return nil, nascar.ErrNotAvailable
}

func newProxyRouter(t *testing.T, limit int64) *chi.Mux {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewProxyHandler(
		&stubFeed{races: []nascar.RaceListEntry{{RaceID: 5546, RaceName: "Daytona 500"}}},
		cache.NewResultsCache(client),
		cache.NewRateLimiter(client, limit, time.Minute),
		metrics.New(prometheus.NewRegistry()),
		logger,
	)

	router := chi.NewRouter()
	router.Get("/feed/{season}/{series}/races", handler.RaceListHandler)
	return router
}

func TestProxyRateLimitKeysOnRemoteAddr(t *testing.T) {
	router := newProxyRouter(t, 2)

	// Changing the forwarding header must not open a fresh budget for the
	// same connection address.
	call := func(forwardedFor string) int {
		req := httptest.NewRequest(http.MethodGet, "/feed/2025/cup/races", nil)
		req.RemoteAddr = "203.0.113.7:51000"
		if forwardedFor != "" {
			req.Header.Set("X-Forwarded-For", forwardedFor)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, call("10.0.0.1"))
	require.Equal(t, http.StatusOK, call("10.0.0.2"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.3"))
}

func TestProxyRateLimitSeparatesClients(t *testing.T) {
	router := newProxyRouter(t, 1)

	call := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodGet, "/feed/2025/cup/races", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, call("203.0.113.7:51000"))
	assert.Equal(t, http.StatusTooManyRequests, call("203.0.113.7:52000"), "port does not change the bucket")
	assert.Equal(t, http.StatusOK, call("198.51.100.9:40000"))
}
