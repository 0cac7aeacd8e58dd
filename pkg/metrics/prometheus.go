// Package metrics provides Prometheus metrics for the JobRank scoring service.
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

// Manager manages all Prometheus metrics for the JobRank service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Core Business Metrics - submissions and rankings
	submissionsAccepted  prometheus.Counter
	submissionsDuplicate prometheus.Counter
	submissionsRejected  prometheus.Counter
	rankingsComputed     prometheus.Counter
	rankingErrors        prometheus.Counter
	jobsByRank           *prometheus.GaugeVec

	// Validation-mode metrics
	bulkRunsTotal       prometheus.Counter
	bulkJobsScored      prometheus.Counter
	bulkMatchPercentage prometheus.Gauge

	// Operational Health Metrics
	trackedJobs prometheus.Gauge
	workerCount prometheus.Gauge

	// Queue Metrics - recompute queue performance
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker Metrics - recompute processing performance
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System Performance Metrics
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
		namespace:        "jobrank",
		subsystem:        "scoring",
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

// initializeMetrics registers all metrics against the configured registry.
func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.submissionsAccepted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "submissions_accepted_total",
		Help: "Total number of rater submissions accepted.",
	})
	m.submissionsDuplicate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "submissions_duplicate_total",
		Help: "Total number of submissions rejected as duplicates of an existing (job, rater, date) key.",
	})
	m.submissionsRejected = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "submissions_rejected_total",
		Help: "Total number of submissions rejected by validation.",
	})
	m.rankingsComputed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "rankings_computed_total",
		Help: "Total number of job rankings computed and persisted.",
	})
	m.rankingErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "ranking_errors_total",
		Help: "Total number of failed ranking computations.",
	})
	m.jobsByRank = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "jobs_by_rank",
		Help: "Number of jobs currently holding each rank tier.",
	}, []string{"rank"})

	m.bulkRunsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "bulk_validation_runs_total",
		Help: "Total number of bulk validation report runs.",
	})
	m.bulkJobsScored = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "bulk_jobs_scored_total",
		Help: "Total number of bulk test jobs scored across validation runs.",
	})
	m.bulkMatchPercentage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "bulk_match_percentage",
		Help: "Match percentage of the most recent bulk validation run.",
	})

	m.trackedJobs = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "tracked_jobs",
		Help: "Number of jobs tracked in the store.",
	})
	m.workerCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_count",
		Help: "Number of recompute workers.",
	})

	m.queueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_size",
		Help: "Current number of queued recompute requests.",
	})
	m.queueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_capacity",
		Help: "Configured capacity of the recompute queue.",
	})
	m.queueUtilization = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_utilization",
		Help: "Recompute queue utilization ratio (0-1).",
	})
	m.queueEnqueueRate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_enqueue_total",
		Help: "Total number of recompute requests enqueued.",
	})
	m.queueDequeueRate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_dequeue_total",
		Help: "Total number of recompute requests dequeued.",
	})
	m.queueEnqueueErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_enqueue_errors_total",
		Help: "Total number of failed enqueue attempts.",
	})

	m.workerProcessingLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "worker_processing_latency_ms",
		Help:    "Latency of ranking recomputation in milliseconds.",
		Buckets: m.histogramBuckets,
	})
	m.workerErrorRate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_errors_total",
		Help: "Total number of worker processing errors.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds.",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_memory_bytes",
		Help: "Current allocated memory in bytes.",
	})
	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_goroutines",
		Help: "Current number of goroutines.",
	})
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry { return customRegistry }

// Package-level helpers that record against the global manager.

func RecordSubmissionAccepted() { globalManager.submissionsAccepted.Inc() }

func RecordSubmissionDuplicate() { globalManager.submissionsDuplicate.Inc() }

func RecordSubmissionRejected() { globalManager.submissionsRejected.Inc() }

func RecordRankingComputed() { globalManager.rankingsComputed.Inc() }

func RecordRankingError() { globalManager.rankingErrors.Inc() }

// UpdateJobsByRank sets the gauge for a rank tier.
func UpdateJobsByRank(rank string, count int) {
	globalManager.jobsByRank.WithLabelValues(rank).Set(float64(count))
}

func RecordBulkRun(jobsScored int, matchPercentage float64) {
	globalManager.bulkRunsTotal.Inc()
	globalManager.bulkJobsScored.Add(float64(jobsScored))
	globalManager.bulkMatchPercentage.Set(matchPercentage)
}

func UpdateTrackedJobs(n int) { globalManager.trackedJobs.Set(float64(n)) }

func UpdateWorkerCount(n int) { globalManager.workerCount.Set(float64(n)) }

func UpdateQueueSize(n int) { globalManager.queueSize.Set(float64(n)) }

func UpdateQueueCapacity(n int) { globalManager.queueCapacity.Set(float64(n)) }

func UpdateQueueUtilization(ratio float64) { globalManager.queueUtilization.Set(ratio) }

func RecordQueueEnqueue() { globalManager.queueEnqueueRate.Inc() }

func RecordQueueDequeue() { globalManager.queueDequeueRate.Inc() }

func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

func RecordWorkerProcessingLatency(ms float64) {
	globalManager.workerProcessingLatency.Observe(ms)
}

func RecordWorkerError() { globalManager.workerErrorRate.Inc() }

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutineCount.Set(float64(n))
}
