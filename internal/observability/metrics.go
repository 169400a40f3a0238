package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	apiRequestsTotal    *prometheus.CounterVec
	apiLatencySeconds   *prometheus.HistogramVec
	apiErrorsTotal      *prometheus.CounterVec
	submissionsTotal    *prometheus.CounterVec
	reviewsTotal        *prometheus.CounterVec
	pointsCreditedTotal *prometheus.CounterVec
	webhookEventsTotal  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the engine.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leaps_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leaps_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leaps_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leaps_submissions_created_total",
			Help: "Submissions created, by activity.",
		}, []string{"activity"})

		reviewsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leaps_reviews_total",
			Help: "Review decisions applied, by decision.",
		}, []string{"decision"})

		pointsCreditedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leaps_points_credited_total",
			Help: "Ledger credit insertions, by source.",
		}, []string{"source"})

		webhookEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leaps_webhook_events_total",
			Help: "Webhook pipeline outcomes, by status.",
		}, []string{"status"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			submissionsTotal,
			reviewsTotal,
			pointsCreditedTotal,
			webhookEventsTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// SubmissionsCreated exposes the counter for created submissions.
func SubmissionsCreated() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// Reviews exposes the counter for review decisions.
func Reviews() *prometheus.CounterVec {
	RegisterMetrics()
	return reviewsTotal
}

// PointsCredited exposes the counter for ledger credits.
func PointsCredited() *prometheus.CounterVec {
	RegisterMetrics()
	return pointsCreditedTotal
}

// WebhookEvents exposes the counter for webhook pipeline outcomes.
func WebhookEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return webhookEventsTotal
}
