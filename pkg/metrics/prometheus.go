// Package metrics provides Prometheus metrics for the watchability service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the watchability service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Core Business Metrics - one scoring pass over a slate of games
	batchesBuilt  prometheus.Counter
	batchDuration prometheus.Histogram
	gamesScored   prometheus.Gauge
	lastBatchUnix prometheus.Gauge

	// Feed Metrics - external fetch health per feed class
	feedFetches     *prometheus.CounterVec
	feedFetchErrors *prometheus.CounterVec
	feedLatency     *prometheus.HistogramVec

	// Cache Metrics - disk response cache behavior
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	cacheStaleServes prometheus.Counter
	cacheWriteErrors prometheus.Counter

	// Worker Metrics - fan-out pools
	workerCount  *prometheus.GaugeVec
	taskFailures *prometheus.CounterVec
	taskLatency  *prometheus.HistogramVec

	// Store Metrics - closing-spread persistence
	closingSpreadWrites prometheus.Counter
	closingSpreadsHeld  prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "nbawatch",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.batchesBuilt = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batches_built_total",
		Help:      "Total number of completed watchability batch builds",
	})

	m.batchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_duration_seconds",
		Help:      "Histogram of full batch build duration in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	m.gamesScored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_scored",
		Help:      "Number of games in the most recent batch",
	})

	m.lastBatchUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_batch_unix_seconds",
		Help:      "Unix timestamp of the most recent completed batch",
	})

	m.feedFetches = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "feed_fetches_total",
			Help:      "Total number of external feed fetches by feed class",
		},
		[]string{"feed"},
	)

	m.feedFetchErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "feed_fetch_errors_total",
			Help:      "Total number of failed external feed fetches by feed class",
		},
		[]string{"feed"},
	)

	m.feedLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "feed_latency_milliseconds",
			Help:      "External feed fetch latency in milliseconds by feed class",
			Buckets:   m.histogramBuckets,
		},
		[]string{"feed"},
	)

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Total number of fresh disk cache hits",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Total number of disk cache misses",
	})

	m.cacheStaleServes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_stale_serves_total",
		Help:      "Total number of stale cache entries served after a fetch failure",
	})

	m.cacheWriteErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_write_errors_total",
		Help:      "Total number of disk cache write failures",
	})

	m.workerCount = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "worker_count",
			Help:      "Configured size of each fan-out worker pool",
		},
		[]string{"pool"},
	)

	m.taskFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "task_failures_total",
			Help:      "Total number of per-key tasks that degraded to defaults",
		},
		[]string{"pool"},
	)

	m.taskLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "task_latency_milliseconds",
			Help:      "Per-key fetch-and-compute task latency in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"pool"},
	)

	m.closingSpreadWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "closing_spread_writes_total",
		Help:      "Total number of closing-spread store flushes",
	})

	m.closingSpreadsHeld = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "closing_spreads_held",
		Help:      "Number of game ids currently held in the closing-spread store",
	})
}

// Registry returns the registry all metrics are registered on.
func Registry() *prometheus.Registry { return customRegistry }

// Package-level helpers backed by the global manager.

// RecordBatchBuilt records a completed batch and its duration.
func RecordBatchBuilt(duration time.Duration, games int) {
	globalManager.batchesBuilt.Inc()
	globalManager.batchDuration.Observe(duration.Seconds())
	globalManager.gamesScored.Set(float64(games))
	globalManager.lastBatchUnix.Set(float64(time.Now().Unix()))
}

// RecordFeedFetch records a feed fetch and its latency.
func RecordFeedFetch(feed string, latency time.Duration) {
	globalManager.feedFetches.WithLabelValues(feed).Inc()
	globalManager.feedLatency.WithLabelValues(feed).Observe(float64(latency.Milliseconds()))
}

// RecordFeedFetchError records a failed feed fetch.
func RecordFeedFetchError(feed string) {
	globalManager.feedFetchErrors.WithLabelValues(feed).Inc()
}

// RecordCacheHit records a fresh cache hit.
func RecordCacheHit() { globalManager.cacheHits.Inc() }

// RecordCacheMiss records a cache miss.
func RecordCacheMiss() { globalManager.cacheMisses.Inc() }

// RecordCacheStaleServe records a stale entry served after a fetch failure.
func RecordCacheStaleServe() { globalManager.cacheStaleServes.Inc() }

// RecordCacheWriteError records a failed cache write.
func RecordCacheWriteError() { globalManager.cacheWriteErrors.Inc() }

// UpdateWorkerCount sets the configured size of a worker pool.
func UpdateWorkerCount(pool string, n int) {
	globalManager.workerCount.WithLabelValues(pool).Set(float64(n))
}

// RecordTaskFailure records a per-key task that degraded to defaults.
func RecordTaskFailure(pool string) {
	globalManager.taskFailures.WithLabelValues(pool).Inc()
}

// RecordTaskLatency records a per-key task latency in milliseconds.
func RecordTaskLatency(pool string, latencyMS float64) {
	globalManager.taskLatency.WithLabelValues(pool).Observe(latencyMS)
}

// RecordClosingSpreadWrite records a store flush and the number of entries held.
func RecordClosingSpreadWrite(held int) {
	globalManager.closingSpreadWrites.Inc()
	globalManager.closingSpreadsHeld.Set(float64(held))
}
