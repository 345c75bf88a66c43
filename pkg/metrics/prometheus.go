// Package metrics provides Prometheus metrics for the ratings service.
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

// Manager manages all Prometheus metrics for the ratings service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Run metrics - one rating run per division per request
	runsStarted   prometheus.Counter
	runsCompleted prometheus.Counter
	runsFailed    prometheus.Counter
	runDuration   prometheus.Histogram

	// Pipeline metrics - data preparation quality
	gamesLoaded      prometheus.Counter
	gamesNormalized  prometheus.Counter
	gamesDropped     *prometheus.CounterVec
	guestsTagged     prometheus.Counter
	teamsSummarized  prometheus.Gauge
	teamsEligible    prometheus.Gauge
	prepareDuration  prometheus.Histogram
	solveDuration    prometheus.Histogram
	solverIterations prometheus.Counter

	// Table store metrics
	tableLoadLatency prometheus.Histogram
	tableSaveLatency prometheus.Histogram
	tableErrors      *prometheus.CounterVec

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueTotal  prometheus.Counter
	queueDequeueTotal  prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "ratings",
		subsystem:        "engine",
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
func (m *Manager) initializeMetrics() { //nolint:funlen // metric registration is necessarily linear
	auto := promauto.With(m.registry)

	m.runsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_started_total",
		Help:      "Total number of rating runs started",
	})

	m.runsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_completed_total",
		Help:      "Total number of rating runs completed successfully",
	})

	m.runsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_failed_total",
		Help:      "Total number of rating runs that aborted with an error",
	})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "Histogram of full rating run durations in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.gamesLoaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_loaded_total",
		Help:      "Total number of raw game rows loaded from the table store",
	})

	m.gamesNormalized = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_normalized_total",
		Help:      "Total number of games surviving normalization",
	})

	m.gamesDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_dropped_total",
		Help:      "Total number of game rows dropped during normalization, by reason",
	}, []string{"reason"})

	m.guestsTagged = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "guests_tagged_total",
		Help:      "Total number of unrostered participants tagged with a tournament suffix",
	})

	m.teamsSummarized = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "teams_summarized",
		Help:      "Number of teams in the most recent prepared dataset",
	})

	m.teamsEligible = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "teams_eligible",
		Help:      "Number of eligible teams in the most recent prepared dataset",
	})

	m.prepareDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prepare_duration_seconds",
		Help:      "Histogram of data preparation durations in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.solveDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "solve_duration_seconds",
		Help:      "Histogram of rank-fit solver durations in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.solverIterations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "solver_iterations_total",
		Help:      "Total number of solver iterations executed",
	})

	m.tableLoadLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "table_load_latency_milliseconds",
		Help:      "Histogram of table load latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.tableSaveLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "table_save_latency_milliseconds",
		Help:      "Histogram of table save latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.tableErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "table_errors_total",
		Help:      "Total number of table store errors, by table and kind",
	}, []string{"table", "kind"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of queued rating runs",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the run queue",
	})

	m.queueEnqueueTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of runs enqueued",
	})

	m.queueDequeueTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of runs dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of rejected enqueue attempts",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Current number of run workers",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Histogram of per-run worker processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of worker processing errors",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "Histogram of HTTP request durations in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// Run metrics.

func RecordRunStarted()   { globalManager.runsStarted.Inc() }
func RecordRunCompleted() { globalManager.runsCompleted.Inc() }
func RecordRunFailed()    { globalManager.runsFailed.Inc() }

func RecordRunDuration(seconds float64) { globalManager.runDuration.Observe(seconds) }

// Pipeline metrics.

func RecordGamesLoaded(n int)     { globalManager.gamesLoaded.Add(float64(n)) }
func RecordGamesNormalized(n int) { globalManager.gamesNormalized.Add(float64(n)) }

// RecordGamesDropped counts rows removed during normalization. Reasons:
// "missing_score", "draw", "forfeit".
func RecordGamesDropped(reason string, n int) {
	globalManager.gamesDropped.WithLabelValues(reason).Add(float64(n))
}

func RecordGuestsTagged(n int)    { globalManager.guestsTagged.Add(float64(n)) }
func UpdateTeamsSummarized(n int) { globalManager.teamsSummarized.Set(float64(n)) }
func UpdateTeamsEligible(n int)   { globalManager.teamsEligible.Set(float64(n)) }

func RecordPrepareDuration(seconds float64) { globalManager.prepareDuration.Observe(seconds) }
func RecordSolveDuration(seconds float64)   { globalManager.solveDuration.Observe(seconds) }
func RecordSolverIterations(n int)          { globalManager.solverIterations.Add(float64(n)) }

// Table store metrics.

func RecordTableLoadLatency(latencyMs float64) { globalManager.tableLoadLatency.Observe(latencyMs) }
func RecordTableSaveLatency(latencyMs float64) { globalManager.tableSaveLatency.Observe(latencyMs) }

func RecordTableError(table, kind string) {
	globalManager.tableErrors.WithLabelValues(table, kind).Inc()
}

// Queue metrics.

func UpdateQueueSize(size int)         { globalManager.queueSize.Set(float64(size)) }
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }
func RecordQueueEnqueue()              { globalManager.queueEnqueueTotal.Inc() }
func RecordQueueDequeue()              { globalManager.queueDequeueTotal.Inc() }
func RecordQueueEnqueueError()         { globalManager.queueEnqueueErrors.Inc() }

// Worker metrics.

func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

func RecordWorkerError() { globalManager.workerErrors.Inc() }

// HTTP metrics.

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// System metrics.

func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// GetRegistry returns the custom registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
