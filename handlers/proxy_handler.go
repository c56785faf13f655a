package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/racefan-dev/fantasy-chase/cache"
	"github.com/racefan-dev/fantasy-chase/metrics"
	"github.com/racefan-dev/fantasy-chase/models"
	"github.com/racefan-dev/fantasy-chase/nascar"
)

// ProxyHandler serves race data from the upstream results feed through a
// Redis cache, so browser clients never hit the feed directly.
type ProxyHandler struct {
	feed    nascar.Client
	cache   *cache.ResultsCache
	limiter *cache.RateLimiter
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewProxyHandler(
	feed nascar.Client,
	resultsCache *cache.ResultsCache,
	limiter *cache.RateLimiter,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ProxyHandler {
	return &ProxyHandler{
		feed:    feed,
		cache:   resultsCache,
		limiter: limiter,
		metrics: m,
		logger:  logger,
	}
}

// RaceListHandler handles GET /feed/{season}/{series}/races.
func (h *ProxyHandler) RaceListHandler(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r) {
		return
	}

	season, err := urlParamInt(r, "season")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	series, err := parseSeries(chi.URLParam(r, "series"))
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	key := cache.RaceListKey(season, series.SeriesID())
	if h.serveCached(w, r, key) {
		return
	}

	races, err := h.feed.RaceList(r.Context(), season, series)
	if err != nil {
		h.feedError(w, err)
		return
	}

	h.respondAndCache(w, r, key, cache.RaceListTTL, jsonResponse{"races": races})
}

// RaceDetailHandler handles GET /feed/{season}/{series}/races/{raceID}.
func (h *ProxyHandler) RaceDetailHandler(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r) {
		return
	}

	season, err := urlParamInt(r, "season")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	series, err := parseSeries(chi.URLParam(r, "series"))
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	raceID, err := urlParamInt(r, "raceID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	key := cache.RaceDetailKey(season, series.SeriesID(), raceID)
	if h.serveCached(w, r, key) {
		return
	}

	feed, err := h.feed.WeekendFeed(r.Context(), season, series, raceID)
	if err != nil {
		h.feedError(w, err)
		return
	}

	h.respondAndCache(w, r, key, cache.RaceDetailTTL, jsonResponse{"race": feed.Race()})
}

func (h *ProxyHandler) allow(w http.ResponseWriter, r *http.Request) bool {
	ok, err := h.limiter.Allow(r.Context(), clientIP(r))
	if err != nil {
		// A broken limiter should not take the proxy down with it.
		h.logger.Error("rate limiter check failed", "error", err)
		return true
	}
	if !ok {
		h.metrics.RateLimitRejections.Inc()
		errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded, slow down")
		return false
	}
	return true
}

func (h *ProxyHandler) serveCached(w http.ResponseWriter, r *http.Request, key string) bool {
	payload, err := h.cache.Get(r.Context(), key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			h.logger.Warn("cache read failed", "key", key, "error", err)
		}
		h.metrics.FeedCacheMisses.Inc()
		return false
	}

	h.metrics.FeedCacheHits.Inc()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "HIT")
	_, _ = w.Write(payload)
	return true
}

func (h *ProxyHandler) respondAndCache(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, data jsonResponse) {
	payload, err := json.Marshal(data)
	if err != nil {
		serverErrorResponse(w, h.logger, err)
		return
	}

	if err := h.cache.Set(r.Context(), key, payload, ttl); err != nil {
		h.logger.Warn("cache write failed", "key", key, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	_, _ = w.Write(payload)
}

func (h *ProxyHandler) feedError(w http.ResponseWriter, err error) {
	if errors.Is(err, nascar.ErrNotAvailable) {
		notFoundResponse(w, "race data not available yet")
		return
	}
	serverErrorResponse(w, h.logger, err)
}

func parseSeries(raw string) (models.SeriesType, error) {
	switch models.SeriesType(raw) {
	case models.SeriesCup, models.SeriesXfinity, models.SeriesTrucks:
		return models.SeriesType(raw), nil
	default:
		return "", fmt.Errorf("unknown series %q", raw)
	}
}

// clientIP keys the rate limiter. The router's RealIP middleware already
// resolved forwarding headers into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
