package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	requestsTotal        *prometheus.CounterVec
	requestLatency       *prometheus.HistogramVec
	submissionsTotal     *prometheus.CounterVec
	notificationFailures prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors for the quiz API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		requestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quiz_request_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		}, []string{"method", "route"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_submissions_total",
			Help: "Submission pipeline runs by outcome.",
		}, []string{"outcome"})

		notificationFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_notification_failures_total",
			Help: "Results emails that could not be delivered.",
		})

		prometheus.MustRegister(requestsTotal, requestLatency, submissionsTotal, notificationFailures)
	})
}

// Requests exposes the counter for served requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// RequestLatency exposes the request latency histogram.
func RequestLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return requestLatency
}

// Submissions exposes the pipeline outcome counter.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// NotificationFailures exposes the failed email counter.
func NotificationFailures() prometheus.Counter {
	RegisterMetrics()
	return notificationFailures
}
