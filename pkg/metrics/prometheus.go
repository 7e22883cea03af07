// Package metrics provides Prometheus metrics for the love quiz service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the quiz service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Session lifecycle
	sessionsActive  prometheus.Gauge
	sessionsCreated prometheus.Counter
	sessionsEvicted prometheus.Counter
	sessionsEnded   prometheus.Counter
	sessionsRejects prometheus.Counter
	restarts        prometheus.Counter

	// Quiz progression
	transitions        *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	wrongStep          *prometheus.CounterVec
	declines           prometheus.Counter
	declineDuplicates  prometheus.Counter
	affectionScores    prometheus.Histogram
	scoreBands         *prometheus.CounterVec
	reveals            prometheus.Counter
	celebrations       prometheus.Counter

	// Soundtrack
	mediaFailures *prometheus.CounterVec
	musicToggles  prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Telegram
	telegramUpdates *prometheus.CounterVec

	// Queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueued          prometheus.Counter
	queueDequeued          prometheus.Counter
	queueDropped           prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Workers
	workerActiveCount       prometheus.Gauge
	workerIdleCount         prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	sinkErrors              *prometheus.CounterVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "lovequiz",
		subsystem:        "session",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
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
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.sessionsActive = m.gauge("active", "Number of live quiz sessions")
	m.sessionsCreated = m.counter("created_total", "Total number of quiz sessions created")
	m.sessionsEvicted = m.counter("evicted_total", "Total number of sessions evicted after going idle")
	m.sessionsEnded = m.counter("ended_total", "Total number of sessions ended by the client")
	m.sessionsRejects = m.counter("rejected_total", "Total number of sessions refused because the store was full")
	m.restarts = m.counter("restarts_total", "Total number of quiz restarts")

	m.transitions = m.counterVec("transitions_total", "Forward step transitions", "from", "to")
	m.validationFailures = m.counterVec("validation_failures_total",
		"Rejected name or partner submissions", "field", "kind")
	m.wrongStep = m.counterVec("wrong_step_total", "Operations attempted in the wrong step", "op")
	m.declines = m.counter("declines_total", "Times the decline control was evaded")
	m.declineDuplicates = m.counter("decline_duplicates_total", "Repeated decline gestures that were ignored")
	m.affectionScores = m.histogram("affection_score", "Confirmed affection scores",
		[]float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100})
	m.scoreBands = m.counterVec("score_band_total", "Confirmed scores by message band", "band")
	m.reveals = m.counter("reveals_total", "Times the ending was revealed")
	m.celebrations = m.counter("celebrations_total", "Confetti celebrations started")

	m.mediaFailures = m.counterVec("media_failures_total", "Swallowed soundtrack failures", "op")
	m.musicToggles = m.counter("music_toggles_total", "Soundtrack mute toggles")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.telegramUpdates = m.counterVec("telegram_updates_total", "Telegram updates handled", "kind")

	m.queueSize = m.gauge("queue_size", "Current number of buffered transition events")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (size / capacity)")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Total number of events enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Total number of events dequeued")
	m.queueDropped = m.counter("queue_dropped_total", "Events dropped because the queue was full or closed")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds",
		"Time an event waited in the queue in milliseconds", m.histogramBuckets)

	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers handling an event")
	m.workerIdleCount = m.gauge("worker_idle_count", "Number of idle workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Sink fan-out latency in milliseconds", m.histogramBuckets)
	m.sinkErrors = m.counterVec("sink_errors_total", "Event sink failures", "sink")

	m.errorsByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// UpdateSessionsActive sets the live session count.
func UpdateSessionsActive(n int) {
	globalManager.sessionsActive.Set(float64(n))
}

// RecordSessionCreated counts a new session.
func RecordSessionCreated() {
	globalManager.sessionsCreated.Inc()
}

// RecordSessionsEvicted counts sessions removed by the janitor.
func RecordSessionsEvicted(n int) {
	globalManager.sessionsEvicted.Add(float64(n))
}

// RecordSessionEnded counts a session torn down by its client.
func RecordSessionEnded() {
	globalManager.sessionsEnded.Inc()
}

// RecordSessionRejected counts a create refused at capacity.
func RecordSessionRejected() {
	globalManager.sessionsRejects.Inc()
}

// RecordRestart counts a quiz restart.
func RecordRestart() {
	globalManager.restarts.Inc()
}

// RecordTransition counts a forward step transition.
func RecordTransition(from, to string) {
	globalManager.transitions.WithLabelValues(from, to).Inc()
}

// RecordValidationFailure counts a rejected submission.
func RecordValidationFailure(field, kind string) {
	globalManager.validationFailures.WithLabelValues(field, kind).Inc()
}

// RecordWrongStep counts an operation issued in the wrong step.
func RecordWrongStep(op string) {
	globalManager.wrongStep.WithLabelValues(op).Inc()
}

// RecordDecline counts an evaded decline.
func RecordDecline() {
	globalManager.declines.Inc()
}

// RecordDeclineDuplicate counts an ignored repeated gesture.
func RecordDeclineDuplicate() {
	globalManager.declineDuplicates.Inc()
}

// RecordAffectionScore observes a confirmed score and its band.
func RecordAffectionScore(score int, band string) {
	globalManager.affectionScores.Observe(float64(score))
	globalManager.scoreBands.WithLabelValues(band).Inc()
}

// RecordReveal counts an ending reveal.
func RecordReveal() {
	globalManager.reveals.Inc()
}

// RecordCelebration counts a started confetti timer.
func RecordCelebration() {
	globalManager.celebrations.Inc()
}

// RecordMediaFailure counts a swallowed soundtrack failure.
func RecordMediaFailure(op string) {
	globalManager.mediaFailures.WithLabelValues(op).Inc()
}

// RecordMusicToggle counts a mute toggle.
func RecordMusicToggle() {
	globalManager.musicToggles.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordTelegramUpdate counts a handled Telegram update by kind (message, callback).
func RecordTelegramUpdate(kind string) {
	globalManager.telegramUpdates.WithLabelValues(kind).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueDropped increments the dropped counter.
func RecordQueueDropped() {
	globalManager.queueDropped.Inc()
}

// RecordQueueProcessingLatency records how long an event waited.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerIdleCount sets the number of idle workers.
func UpdateWorkerIdleCount(count int) {
	globalManager.workerIdleCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordSinkError counts a failed sink delivery.
func RecordSinkError(sink string) {
	globalManager.sinkErrors.WithLabelValues(sink).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
