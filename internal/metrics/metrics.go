package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     prometheus.CounterVec
	HTTPRequestDuration   prometheus.HistogramVec
	HTTPResponseSize      prometheus.HistogramVec
	HTTPActiveConnections prometheus.GaugeVec

	// Cache metrics
	CacheHitsTotal         prometheus.CounterVec
	CacheMissesTotal       prometheus.CounterVec
	CacheOperationDuration prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitExceededTotal prometheus.CounterVec

	// Dataset metrics
	DatasetLoadDuration  prometheus.HistogramVec
	DatasetRowsLoaded    prometheus.CounterVec
	DatasetMalformedRows prometheus.CounterVec
	DatasetEncodingUsed  prometheus.CounterVec

	// Pipeline metrics
	PipelineStageDuration  prometheus.HistogramVec
	RecommendationOutcomes prometheus.CounterVec

	// Circuit breaker metrics
	CircuitBreakerState    prometheus.GaugeVec
	CircuitBreakerRequests prometheus.CounterVec

	// Error metrics
	ErrorsTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
				},
				[]string{"method", "path", "status"},
			),
			HTTPResponseSize: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_response_size_bytes",
					Help:    "HTTP response size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 7),
				},
				[]string{"method", "path", "status"},
			),
			HTTPActiveConnections: *promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "http_active_connections",
					Help: "Number of currently active HTTP connections",
				},
				[]string{"method", "path"},
			),

			CacheHitsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Total number of cache hits",
				},
				[]string{"cache_name"},
			),
			CacheMissesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Total number of cache misses",
				},
				[]string{"cache_name"},
			),
			CacheOperationDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "cache_operation_duration_seconds",
					Help:    "Cache operation latency in seconds",
					Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
				},
				[]string{"operation", "cache_name"},
			),

			RateLimitExceededTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Total number of rate limit violations",
				},
				[]string{"endpoint", "method"},
			),

			DatasetLoadDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "dataset_load_duration_seconds",
					Help:    "Time to read, decode and parse one CSV dataset",
					Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
				},
				[]string{"dataset"},
			),
			DatasetRowsLoaded: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "dataset_rows_loaded_total",
					Help: "Total number of CSV rows accepted by the loader",
				},
				[]string{"dataset"},
			),
			DatasetMalformedRows: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "dataset_malformed_rows_total",
					Help: "Total number of CSV rows skipped as malformed",
				},
				[]string{"dataset"},
			),
			DatasetEncodingUsed: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "dataset_encoding_used_total",
					Help: "Which decoding strategy succeeded per dataset load",
				},
				[]string{"dataset", "strategy"},
			),

			PipelineStageDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "pipeline_stage_duration_seconds",
					Help:    "Duration of each recommendation pipeline stage",
					Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"stage"},
			),
			RecommendationOutcomes: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "recommendation_outcomes_total",
					Help: "Recommendation requests by terminal outcome",
				},
				[]string{"outcome"},
			),

			CircuitBreakerState: *promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "circuit_breaker_state",
					Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
				},
				[]string{"name"},
			),
			CircuitBreakerRequests: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "circuit_breaker_requests_total",
					Help: "Requests through a circuit breaker by result",
				},
				[]string{"name", "result"},
			),

			ErrorsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Total number of errors by type",
				},
				[]string{"error_type", "endpoint"},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	return Initialize()
}
