package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search, ingestion and queue metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hybridsearch",
			Name:      "search_requests_total",
			Help:      "Total search requests by mode and status",
		},
		[]string{"mode", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hybridsearch",
			Name:      "search_duration_seconds",
			Help:      "Search latency in seconds, retrieval plus fusion",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode"},
	)

	IngestSourcesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hybridsearch",
			Name:      "ingest_sources_total",
			Help:      "Ingested sources by outcome",
		},
		[]string{"outcome"}, // "indexed" / "skipped" / "failed"
	)

	IngestBatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hybridsearch",
			Name:      "ingest_batches_total",
			Help:      "Completed ingestion batches",
		},
	)

	IngestCommitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hybridsearch",
			Name:      "ingest_commits_total",
			Help:      "Index commits issued by ingestion batches",
		},
		[]string{"status"},
	)

	QueueEnqueuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hybridsearch",
			Name:      "queue_enqueued_total",
			Help:      "URLs appended to the crawl queue",
		},
	)
)

var serviceMetricsRegistered bool

// RegisterServiceMetrics registers search, ingestion and queue metrics. Must be called once from main.
func RegisterServiceMetrics() {
	if serviceMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(IngestSourcesTotal)
	prometheus.MustRegister(IngestBatchesTotal)
	prometheus.MustRegister(IngestCommitsTotal)
	prometheus.MustRegister(QueueEnqueuedTotal)
	serviceMetricsRegistered = true
}

// Status returns the status label for an operation result.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
