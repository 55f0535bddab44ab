package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Responses by status category (2xx, 4xx, 5xx)
	StatusCodeCategoryCounter *prometheus.CounterVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Repository operations per kind, operation and outcome
	EntityOperationsCounter *prometheus.CounterVec

	// Image ingestion metrics
	ImagesStoredCounter    prometheus.Counter
	ImagesRejectedCounter  prometheus.Counter
	ImagesDiscardedCounter prometheus.Counter
}

// NewMetrics registers the collectors on reg with the given name prefix
func NewMetrics(prefix string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HttpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		HttpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		StatusCodeCategoryCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_status_category_total",
				Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
			},
			[]string{"category", "method", "path"},
		),

		AuthAttemptsCounter: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_attempts_total",
				Help: "Total number of authentication attempts",
			},
		),

		AuthSuccessCounter: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_success_total",
				Help: "Total number of successful authentications",
			},
		),

		AuthErrorsCounter: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_errors_total",
				Help: "Total number of authentication errors",
			},
		),

		DbOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation_type"},
		),

		EntityOperationsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_entity_operations_total",
				Help: "Total number of repository operations",
			},
			[]string{"kind", "operation", "outcome"},
		),

		ImagesStoredCounter: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_images_stored_total",
				Help: "Total number of images written to the image store",
			},
		),

		ImagesRejectedCounter: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_images_rejected_total",
				Help: "Total number of image payloads rejected as invalid binary content",
			},
		),

		ImagesDiscardedCounter: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_images_discarded_total",
				Help: "Total number of orphaned images removed after a rollback",
			},
		),
	}
}

// ObserveHTTPRequest records one served request
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.HttpRequestsTotal.WithLabelValues(method, path, code).Inc()
	m.HttpRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())

	if category := statusCategory(status); category != "" {
		m.StatusCodeCategoryCounter.WithLabelValues(category, method, path).Inc()
	}
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	default:
		return ""
	}
}

// TrackDBOperation returns a function that records the duration of a database operation
func (m *Metrics) TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if m == nil {
			return
		}
		duration := time.Since(startTime).Seconds()
		m.DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordEntityOperation increments the counter for repository operations
func (m *Metrics) RecordEntityOperation(kind, operation, outcome string) {
	if m == nil {
		return
	}
	m.EntityOperationsCounter.WithLabelValues(kind, operation, outcome).Inc()
}

// RecordAuthAttempt counts an authentication attempt and its result
func (m *Metrics) RecordAuthAttempt(ok bool) {
	if m == nil {
		return
	}
	m.AuthAttemptsCounter.Inc()
	if ok {
		m.AuthSuccessCounter.Inc()
	} else {
		m.AuthErrorsCounter.Inc()
	}
}

// RecordImageStored increments the stored image counter
func (m *Metrics) RecordImageStored() {
	if m == nil {
		return
	}
	m.ImagesStoredCounter.Inc()
}

// RecordImageRejected increments the rejected payload counter
func (m *Metrics) RecordImageRejected() {
	if m == nil {
		return
	}
	m.ImagesRejectedCounter.Inc()
}

// RecordImageDiscarded increments the discarded orphan counter
func (m *Metrics) RecordImageDiscarded() {
	if m == nil {
		return
	}
	m.ImagesDiscardedCounter.Inc()
}
