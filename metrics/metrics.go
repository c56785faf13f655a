// Package metrics exposes operational counters for the scoring and chase
// pipelines, served on /metrics in the Prometheus text format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RacesScored          *prometheus.CounterVec
	ScoringFailures      prometheus.Counter
	ChaseRoundsProcessed *prometheus.CounterVec
	FeedCacheHits        prometheus.Counter
	FeedCacheMisses      prometheus.Counter
	RateLimitRejections  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RacesScored: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fantasy_chase_races_scored_total",
			Help: "Races scored, labelled by trigger (manual or scheduler).",
		}, []string{"trigger"}),
		ScoringFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "fantasy_chase_scoring_failures_total",
			Help: "Scoring runs that ended in an error.",
		}),
		ChaseRoundsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fantasy_chase_rounds_processed_total",
			Help: "Chase transitions processed, labelled by action.",
		}, []string{"action"}),
		FeedCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "fantasy_chase_feed_cache_hits_total",
			Help: "Results proxy requests served from cache.",
		}),
		FeedCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "fantasy_chase_feed_cache_misses_total",
			Help: "Results proxy requests that went to the upstream feed.",
		}),
		RateLimitRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "fantasy_chase_rate_limit_rejections_total",
			Help: "Results proxy requests rejected by the rate limiter.",
		}),
	}
}
