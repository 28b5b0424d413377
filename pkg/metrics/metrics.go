// Package metrics provides Prometheus metrics for the reflex service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector the service registers.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	// Submission pipeline
	submissionsAccepted  prometheus.Counter
	submissionsRejected  *prometheus.CounterVec
	submissionsThrottled prometheus.Counter

	// Ranking store
	storeUpdateLatency prometheus.Histogram
	storeQueryLatency  prometheus.Histogram
	storeRecords       *prometheus.GaugeVec

	// Persistence pipeline
	persistQueueSize        prometheus.Gauge
	persistQueueCapacity    prometheus.Gauge
	persistQueueUtilization prometheus.Gauge
	persistErrors           prometheus.Counter
	persistWrites           prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Component errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryBytes prometheus.Gauge
	systemGoroutines  prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // avoids default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "reflex",
		buckets:   []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	factory := promauto.With(m.registry)

	m.submissionsAccepted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "submissions_accepted_total",
		Help:      "Score submissions accepted into the leaderboard.",
	})
	m.submissionsRejected = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "submissions_rejected_total",
		Help:      "Score submissions rejected by the validator, by reason.",
	}, []string{"reason"})
	m.submissionsThrottled = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "submissions_throttled_total",
		Help:      "Score submissions dropped by the client-tag rate bucket.",
	})

	m.storeUpdateLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "store_update_latency_ms",
		Help:      "Latency of ranking store inserts in milliseconds.",
		Buckets:   m.buckets,
	})
	m.storeQueryLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "store_query_latency_ms",
		Help:      "Latency of ranking store queries in milliseconds.",
		Buckets:   m.buckets,
	})
	m.storeRecords = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "store_records",
		Help:      "Records held per leaderboard partition.",
	}, []string{"partition"})

	m.persistQueueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "persist_queue_size",
		Help:      "Records waiting in the write-behind persistence queue.",
	})
	m.persistQueueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "persist_queue_capacity",
		Help:      "Capacity of the write-behind persistence queue.",
	})
	m.persistQueueUtilization = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "persist_queue_utilization",
		Help:      "Persistence queue fill ratio between 0 and 1.",
	})
	m.persistErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "persist_errors_total",
		Help:      "Failed durable-store writes.",
	})
	m.persistWrites = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "persist_writes_total",
		Help:      "Successful durable-store writes.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.buckets,
	}, []string{"endpoint", "method"})

	m.errorsByComponent = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "errors_total",
		Help:      "Errors by component and kind.",
	}, []string{"component", "kind"})

	m.systemMemoryBytes = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "system_memory_bytes",
		Help:      "Heap bytes currently allocated.",
	})
	m.systemGoroutines = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "system_goroutines",
		Help:      "Number of live goroutines.",
	})

	return m
}

// GetRegistry returns the registry backing the global manager, for promhttp.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers delegating to the global manager.

func RecordSubmissionAccepted() { globalManager.submissionsAccepted.Inc() }
func RecordSubmissionRejected(reason string) {
	globalManager.submissionsRejected.WithLabelValues(reason).Inc()
}
func RecordSubmissionThrottled() { globalManager.submissionsThrottled.Inc() }

func RecordStoreUpdateLatency(ms float64) { globalManager.storeUpdateLatency.Observe(ms) }
func RecordStoreQueryLatency(ms float64)  { globalManager.storeQueryLatency.Observe(ms) }
func UpdateStoreRecords(partition string, n int) {
	globalManager.storeRecords.WithLabelValues(partition).Set(float64(n))
}

func UpdatePersistQueueSize(n int)     { globalManager.persistQueueSize.Set(float64(n)) }
func UpdatePersistQueueCapacity(n int) { globalManager.persistQueueCapacity.Set(float64(n)) }
func UpdatePersistQueueUtilization(u float64) {
	globalManager.persistQueueUtilization.Set(u)
}
func RecordPersistError() { globalManager.persistErrors.Inc() }
func RecordPersistWrite() { globalManager.persistWrites.Inc() }

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}
func RecordHTTPRequestDuration(endpoint, method string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(ms)
}

func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryBytes.Set(float64(bytes))
}
func UpdateSystemGoroutineCount(n int) { globalManager.systemGoroutines.Set(float64(n)) }
