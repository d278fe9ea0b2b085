package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "travel_api"

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// PlaceQueryDuration observes one retrieval pipeline end to end.
	PlaceQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "place_query_duration_seconds",
			Help:      "Place retrieval pipeline duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"mode"},
	)

	// PlaceTableErrorsTotal counts per-table query failures that were skipped.
	PlaceTableErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "place_table_errors_total",
			Help:      "Per-table candidate query failures",
		},
		[]string{"mode", "table"},
	)

	// ImageEnrichmentTotal counts enrichment outcomes per row.
	ImageEnrichmentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_enrichment_total",
			Help:      "Image enrichment outcomes",
		},
		[]string{"outcome"}, // "cached" / "fetched" / "not_found" / "timeout" / "error"
	)

	// RefetchQueueTotal counts background refetch jobs by result.
	RefetchQueueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_refetch_total",
			Help:      "Background image refetch jobs",
		},
		[]string{"result"}, // "submitted" / "dropped" / "skipped" / "stored" / "failed"
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// CircuitBreakerRequests counts calls through a breaker by result.
	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_requests_total",
			Help:      "Requests through a circuit breaker",
		},
		[]string{"name", "result"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call twice.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			PlaceQueryDuration,
			PlaceTableErrorsTotal,
			ImageEnrichmentTotal,
			RefetchQueueTotal,
			CircuitBreakerState,
			CircuitBreakerRequests,
		)
	})
}
