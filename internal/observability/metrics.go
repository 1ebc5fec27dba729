package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	ratingsWrittenTotal   *prometheus.CounterVec
	feedbackAttachedTotal *prometheus.CounterVec
	auditWriteFailures    prometheus.Counter
	auditPublishFailures  *prometheus.CounterVec
	aggregateQuerySeconds prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "luct_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "luct_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "luct_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		ratingsWrittenTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "luct_ratings_written_total",
			Help: "Ratings persisted, split by entity kind and insert/update outcome.",
		}, []string{"entity", "outcome"})

		feedbackAttachedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "luct_feedback_attached_total",
			Help: "Feedback attach attempts by reviewer role and outcome.",
		}, []string{"role", "outcome"})

		auditWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "luct_audit_write_failures_total",
			Help: "Audit events that could not be persisted.",
		})

		auditPublishFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "luct_audit_publish_failures_total",
			Help: "Audit events that could not be fanned out to a broker.",
		}, []string{"broker"})

		aggregateQuerySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "luct_rating_aggregate_seconds",
			Help:    "Latency of live rating aggregate queries.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			ratingsWrittenTotal,
			feedbackAttachedTotal,
			auditWriteFailures,
			auditPublishFailures,
			aggregateQuerySeconds,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// RatingsWritten exposes the rating upsert counter.
func RatingsWritten() *prometheus.CounterVec {
	RegisterMetrics()
	return ratingsWrittenTotal
}

// FeedbackAttached exposes the feedback attach counter.
func FeedbackAttached() *prometheus.CounterVec {
	RegisterMetrics()
	return feedbackAttachedTotal
}

// AuditWriteFailures exposes the counter of dropped audit events.
func AuditWriteFailures() prometheus.Counter {
	RegisterMetrics()
	return auditWriteFailures
}

// AuditPublishFailures exposes the broker fan-out failure counter.
func AuditPublishFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return auditPublishFailures
}

// AggregateLatency exposes the aggregate query histogram.
func AggregateLatency() prometheus.Histogram {
	RegisterMetrics()
	return aggregateQuerySeconds
}
