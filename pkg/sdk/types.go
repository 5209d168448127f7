package sdk

import "time"

// SearchMode selects the retrieval strategy.
type SearchMode string

// Search mode constants. The legacy names "bm25" and "hybrid" are accepted too.
const (
	ModeLexical SearchMode = "lexical"
	ModeVector  SearchMode = "vector"
	ModeFused   SearchMode = "fused"
)

// Query is a search request. Zero Rows and RerankDocs take the defaults
// (10 and 20); an empty Mode means fused.
type Query struct {
	Text       string
	Mode       SearchMode
	Rows       int
	RerankDocs int
}

// Result is one ranked hit. Features holds the normalized per-retriever
// scores of fused results.
type Result struct {
	ID       string
	Title    string
	URL      string
	Content  string
	Score    float64
	Features map[string]float64
}

// SearchResponse is the outcome of a query.
type SearchResponse struct {
	Query      string
	Mode       SearchMode
	TotalFound int
	Results    []Result
	QueryTime  time.Duration
}

// IndexResult acknowledges a stored document.
type IndexResult struct {
	ID                 string
	EmbeddingDimension int
}

// SourceOutcome is the result of ingesting one URL.
type SourceOutcome struct {
	URL    string
	ID     string
	Status string // indexed, skipped, failed
	Err    error
}

// IngestReport summarizes a batch.
type IngestReport struct {
	Total     int
	Indexed   int
	Skipped   int
	Failed    int
	Committed bool
	CommitErr error
	Outcomes  []SourceOutcome
	Duration  time.Duration
}

// EnqueueResult reports a crawl queue append.
type EnqueueResult struct {
	Appended    int
	QueueLength int64
}

// Stats is a collection snapshot.
type Stats struct {
	DocumentsIndexed int
	CrawlQueueLength int64
	EmbeddingModel   string
	VectorDimension  int
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status   string            // "healthy" or "degraded"
	Services map[string]string // index, queue, embeddings -> "healthy"/"unhealthy"
}
