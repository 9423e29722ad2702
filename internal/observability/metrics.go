package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	pathGenerationsTotal   *prometheus.CounterVec
	pathGenerationSeconds  prometheus.Histogram
	pathFallbacksTotal     *prometheus.CounterVec
	pathCacheRequestsTotal *prometheus.CounterVec
	pathEventsTotal        *prometheus.CounterVec
	surveySubmissionsTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnora_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "learnora_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnora_http_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		pathGenerationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnora_path_generations_total",
			Help: "Learning path generations by source and outcome.",
		}, []string{"source", "outcome"})

		pathGenerationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "learnora_path_generation_seconds",
			Help:    "End-to-end duration of learning path generation.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		})

		pathFallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnora_path_fallbacks_total",
			Help: "Narration stages that fell back to deterministic templates.",
		}, []string{"stage"})

		pathCacheRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnora_path_cache_requests_total",
			Help: "Learning path reads by cache result.",
		}, []string{"result"})

		pathEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "learnora_path_events_total",
			Help: "Cross-node path lifecycle events by direction.",
		}, []string{"direction"})

		surveySubmissionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "learnora_survey_submissions_total",
			Help: "Total number of survey submissions stored.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			pathGenerationsTotal,
			pathGenerationSeconds,
			pathFallbacksTotal,
			pathCacheRequestsTotal,
			pathEventsTotal,
			surveySubmissionsTotal,
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

// PathGenerations exposes the counter for completed generations.
func PathGenerations() *prometheus.CounterVec {
	RegisterMetrics()
	return pathGenerationsTotal
}

// PathGenerationDuration exposes the generation duration histogram.
func PathGenerationDuration() prometheus.Histogram {
	RegisterMetrics()
	return pathGenerationSeconds
}

// PathFallbacks exposes the counter for fallback narrations.
func PathFallbacks() *prometheus.CounterVec {
	RegisterMetrics()
	return pathFallbacksTotal
}

// PathCacheRequests exposes the counter for path cache hits and misses.
func PathCacheRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return pathCacheRequestsTotal
}

// PathEvents exposes the counter for cross-node path events.
func PathEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return pathEventsTotal
}

// SurveySubmissions exposes the counter for stored surveys.
func SurveySubmissions() prometheus.Counter {
	RegisterMetrics()
	return surveySubmissionsTotal
}
