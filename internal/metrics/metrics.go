// Package metrics exposes Prometheus collectors for the ingest service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	harvestTicksTotal         *prometheus.CounterVec
	harvestPostsTotal         prometheus.Counter
	harvestPostsSkippedTotal  prometheus.Counter
	harvestCyclesTotal        *prometheus.CounterVec
	harvestMediaAssetsTotal   *prometheus.CounterVec
	harvestCheckpointAdvances prometheus.Counter
	searchRequestDurationSecs prometheus.Histogram
	harvestBufferedPosts      prometheus.Gauge
	commitFailuresTotal       *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		harvestTicksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_harvest_ticks_total",
				Help: "Total harvest ticks, labeled by outcome (ok, empty, error).",
			},
			[]string{"outcome"},
		)

		harvestPostsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ingest_harvest_posts_total",
				Help: "Total posts normalized and buffered.",
			},
		)

		harvestPostsSkippedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ingest_harvest_posts_skipped_total",
				Help: "Total malformed posts skipped during normalization.",
			},
		)

		harvestCyclesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_harvest_cycles_total",
				Help: "Total completed cycles, labeled by result (committed, empty, commit_error).",
			},
			[]string{"result"},
		)

		harvestMediaAssetsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_harvest_media_assets_total",
				Help: "Total media attachments processed, labeled by outcome (stored, skipped).",
			},
			[]string{"outcome"},
		)

		harvestCheckpointAdvances = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ingest_harvest_checkpoint_advances_total",
				Help: "Total times the persisted watermark advanced.",
			},
		)

		searchRequestDurationSecs = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ingest_search_request_duration_seconds",
				Help:    "Histogram of upstream search request latencies.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
			},
		)

		harvestBufferedPosts = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ingest_harvest_buffered_posts",
				Help: "Posts buffered in the active cycle.",
			},
		)

		commitFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_commit_failures_total",
				Help: "Total commit-stage write failures, labeled by stage (artifact, checkpoint, rotation, ledger, notify).",
			},
			[]string{"stage"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveTick records the outcome of one harvest tick.
func ObserveTick(outcome string) {
	harvestTicksTotal.WithLabelValues(outcome).Inc()
}

// ObservePosts records normalized and skipped post counts for one tick.
func ObservePosts(normalized, skipped int) {
	harvestPostsTotal.Add(float64(normalized))
	harvestPostsSkippedTotal.Add(float64(skipped))
}

// ObserveCycle records the result of one completed cycle.
func ObserveCycle(result string) {
	harvestCyclesTotal.WithLabelValues(result).Inc()
}

// ObserveMediaAssets records side-loader outcomes for one post.
func ObserveMediaAssets(stored, skipped int) {
	harvestMediaAssetsTotal.WithLabelValues("stored").Add(float64(stored))
	harvestMediaAssetsTotal.WithLabelValues("skipped").Add(float64(skipped))
}

// ObserveCheckpointAdvance records a persisted watermark advance.
func ObserveCheckpointAdvance() {
	harvestCheckpointAdvances.Inc()
}

// ObserveSearchRequest records the latency of one upstream search call.
func ObserveSearchRequest(duration time.Duration) {
	searchRequestDurationSecs.Observe(duration.Seconds())
}

// SetBufferedPosts updates the active-cycle buffer gauge.
func SetBufferedPosts(n int) {
	harvestBufferedPosts.Set(float64(n))
}

// ObserveCommitFailure records a commit-stage write failure.
func ObserveCommitFailure(stage string) {
	commitFailuresTotal.WithLabelValues(stage).Inc()
}
