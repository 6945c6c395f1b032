package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coursematch_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursematch_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// Pipeline
	ParserFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursematch_parser_fallbacks_total",
			Help: "Requests parsed by the rule-based extractor instead of the model",
		},
		[]string{"reason"}, // "model_error", "no_block", "schema", "bounds"
	)

	ComposerFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursematch_composer_fallbacks_total",
			Help: "Recommendations rendered from the fixed template instead of the model",
		},
		[]string{"reason"},
	)

	SourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursematch_source_failures_total",
			Help: "Catalog and grade lookups that failed and degraded to empty data",
		},
		[]string{"source"},
	)

	MatchResultSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "coursematch_match_result_size",
			Help:    "Number of courses returned by the matcher",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)
)

// RecordSourceFailure counts one failed lookup against a named source
func RecordSourceFailure(source string) {
	SourceFailures.WithLabelValues(source).Inc()
}
