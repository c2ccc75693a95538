package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	gradingVerdictsTotal  *prometheus.CounterVec
	gradingFailuresTotal  *prometheus.CounterVec
	gradingLatencySeconds *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors for the HTTP API and the grader.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grader_api_requests_total",
			Help: "Total number of grading API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grader_api_latency_seconds",
			Help:    "Latency distribution for grading API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grader_api_errors_total",
			Help: "Total number of error responses returned by grading endpoints.",
		}, []string{"method", "route", "status"})

		gradingVerdictsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grader_verdicts_total",
			Help: "Verdicts produced, by modality, deciding stage and outcome.",
		}, []string{"modality", "stage", "correct"})

		gradingFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grader_failures_total",
			Help: "Submissions that could not be graded, by modality and reason.",
		}, []string{"modality", "reason"})

		gradingLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grader_evaluation_seconds",
			Help:    "Time spent inside the grader, by modality.",
			Buckets: []float64{0.0005, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"modality"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			gradingVerdictsTotal,
			gradingFailuresTotal,
			gradingLatencySeconds,
		)
	})
}

// APIRequests exposes the counter for grading API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for grading API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for grading API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// GradingVerdicts exposes the verdict counter.
func GradingVerdicts() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingVerdictsTotal
}

// GradingFailures exposes the counter for submissions that returned an error.
func GradingFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingFailuresTotal
}

// GradingLatency exposes the evaluation latency histogram.
func GradingLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return gradingLatencySeconds
}
