// Package metrics provides Prometheus metrics for the loadwatch service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Engine
	computations       *prometheus.CounterVec
	computationLatency prometheus.Histogram
	resourcesEvaluated prometheus.Counter
	overloaded         prometheus.Gauge
	distributed        prometheus.Gauge

	// Cache
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheEvictions prometheus.Counter
	cacheSize      prometheus.Gauge

	// Repository
	projectsStored prometheus.Gauge

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueue       prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter
	workerStaleSkips        prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager. Without WithPrometheusRegistry
// metrics land on the Prometheus default registerer.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "loadwatch",
		subsystem:        "workload",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: name, Help: help, Buckets: m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.computations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "computations_total",
		Help: "Usage computations by origin (evaluate, read, worker)",
	}, []string{"origin"})
	m.computationLatency = m.histogram("computation_latency_milliseconds", "Engine computation latency in milliseconds")
	m.resourcesEvaluated = m.counter("resources_evaluated_total", "Resources classified by the engine")
	m.overloaded = m.gauge("overloaded_resources", "Overloaded resources in the last computation")
	m.distributed = m.gauge("distributed_resources", "Distributed resources in the last computation")

	m.cacheHits = m.counter("cache_hits_total", "Usage cache hits")
	m.cacheMisses = m.counter("cache_misses_total", "Usage cache misses")
	m.cacheEvictions = m.counter("cache_evictions_total", "Usage cache evictions")
	m.cacheSize = m.gauge("cache_size", "Entries held by the usage cache")

	m.projectsStored = m.gauge("projects_stored", "Project snapshots held by the store")

	m.queueSize = m.gauge("queue_size", "Current size of the recompute queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum recompute queue capacity")
	m.queueEnqueue = m.counter("queue_enqueue_total", "Recompute requests enqueued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Recompute requests rejected by a full or closed queue")

	m.workerCount = m.gauge("worker_count", "Running recompute workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Recompute latency per request in milliseconds")
	m.workerErrors = m.counter("worker_errors_total", "Recompute requests that failed")
	m.workerStaleSkips = m.counter("worker_stale_skips_total", "Recompute requests skipped because a newer revision exists")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "errors_by_component_total",
		Help: "Total number of errors by component",
	}, []string{"component", "error_type"})
}

// RecordComputation records one engine run.
func (m *Manager) RecordComputation(origin string, latencyMs float64, resources, overloaded, distributed int) {
	m.computations.WithLabelValues(origin).Inc()
	m.computationLatency.Observe(latencyMs)
	m.resourcesEvaluated.Add(float64(resources))
	m.overloaded.Set(float64(overloaded))
	m.distributed.Set(float64(distributed))
}

// RecordComputation records one engine run on the global manager.
func RecordComputation(origin string, latencyMs float64, resources, overloaded, distributed int) {
	globalManager.RecordComputation(origin, latencyMs, resources, overloaded, distributed)
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() { globalManager.cacheHits.Inc() }

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() { globalManager.cacheMisses.Inc() }

// RecordCacheEviction increments the cache eviction counter.
func RecordCacheEviction() { globalManager.cacheEvictions.Inc() }

// UpdateCacheSize sets the current cache size.
func UpdateCacheSize(size int) { globalManager.cacheSize.Set(float64(size)) }

// UpdateProjectsStored sets the number of stored projects.
func UpdateProjectsStored(count int) { globalManager.projectsStored.Set(float64(count)) }

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueue.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordWorkerStaleSkip increments the stale-revision counter.
func RecordWorkerStaleSkip() { globalManager.workerStaleSkips.Inc() }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
