package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchdex",
			Name:      "search_requests_total",
			Help:      "Total number of compiled searches",
		},
		[]string{"kind", "status"}, // kind: "search" / "similar"
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "matchdex",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"kind"},
	)

	SearchHits = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "matchdex",
			Name:      "search_hits",
			Help:      "Total hits reported by the index per search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	SearchResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchdex",
			Name:      "search_results_total",
			Help:      "Searches by result shape",
		},
		[]string{"shape"}, // "page" / "clusters"
	)

	SimilarFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "matchdex",
			Name:      "similar_fallback_total",
			Help:      "Similar-user searches that needed the broadened retry",
		},
	)

	StaleIDsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchdex",
			Name:      "stale_ids_total",
			Help:      "Index IDs missing from the record store",
		},
		[]string{"result"}, // "queued" / "dropped" / "deleted" / "failed"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchHits)
	prometheus.MustRegister(SearchResultsTotal)
	prometheus.MustRegister(SimilarFallbackTotal)
	prometheus.MustRegister(StaleIDsTotal)
	searchMetricsRegistered = true
}
