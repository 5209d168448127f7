package chi

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	CodeBadRequest         ErrorCode = "bad_request"
	CodeValidationFailed   ErrorCode = "validation_failed"
	CodeInvalidMode        ErrorCode = "invalid_mode"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeNotFound           ErrorCode = "not_found"
	CodeEmbeddingNotReady  ErrorCode = "embedding_unavailable"
	CodeIndexUnavailable   ErrorCode = "index_unavailable"
	CodeQueueUnavailable   ErrorCode = "queue_unavailable"
	CodeIngestBusy         ErrorCode = "ingest_busy"
	CodeVectorDimMismatch  ErrorCode = "vector_dim_mismatch"
	CodeEmbeddingProvider  ErrorCode = "embedding_provider_error"
	CodeMalformedUpstream  ErrorCode = "malformed_upstream_response"
	CodeInternalError      ErrorCode = "internal_error"
	CodeServiceUnavailable ErrorCode = "service_unavailable"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the POST /search body. Mode and SearchType are aliases.
type SearchRequest struct {
	Query      string `json:"query"`
	Mode       string `json:"mode,omitempty"`
	SearchType string `json:"search_type,omitempty"`
	Rows       int    `json:"rows,omitempty"`
	RerankDocs int    `json:"rerank_docs,omitempty"`
}

// SearchParams are the GET /search query parameters.
type SearchParams struct {
	Q          string  `json:"q"`
	Mode       *string `json:"mode,omitempty"`
	Rows       *int    `json:"rows,omitempty"`
	RerankDocs *int    `json:"rerank_docs,omitempty"`
}

// SearchResultItem is one ranked hit.
type SearchResultItem struct {
	ID       string             `json:"id"`
	Title    string             `json:"title"`
	URL      string             `json:"url"`
	Content  string             `json:"content"`
	Score    float64            `json:"score"`
	Features map[string]float64 `json:"features,omitempty"`
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	Query      string             `json:"query"`
	SearchType string             `json:"search_type"`
	Mode       string             `json:"mode"`
	TotalFound int                `json:"total_found"`
	Results    []SearchResultItem `json:"results"`
	QueryTime  float64            `json:"query_time"`
}

// IndexRequest is a direct document submission.
type IndexRequest struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// IndexResponse acknowledges a stored submission.
type IndexResponse struct {
	Message            string `json:"message"`
	ID                 string `json:"id"`
	EmbeddingDimension int    `json:"embedding_dimension"`
}

// URLsRequest is shared by /scrape and /crawl.
type URLsRequest struct {
	URLs []string `json:"urls"`
}

// ScrapeResponse acknowledges a scheduled ingestion batch.
type ScrapeResponse struct {
	Message string   `json:"message"`
	URLs    []string `json:"urls"`
	TaskID  string   `json:"task_id"`
}

// CrawlResponse acknowledges a queue append.
type CrawlResponse struct {
	Message     string   `json:"message"`
	QueueLength int64    `json:"queue_length"`
	URLs        []string `json:"urls"`
}

// StatsResponse is the collection snapshot.
type StatsResponse struct {
	DocumentsIndexed int    `json:"documents_indexed"`
	CrawlQueueLength int64  `json:"crawl_queue_length"`
	EmbeddingModel   string `json:"embedding_model"`
	VectorDimension  int    `json:"vector_dimension"`
}

// HealthResponse reports per-dependency health.
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// EncodeRequest asks for the embedding of a text.
type EncodeRequest struct {
	Text string `json:"text"`
}

// EncodeResponse carries a raw embedding.
type EncodeResponse struct {
	Embedding []float32 `json:"embedding"`
	Dimension int       `json:"dimension"`
	Model     string    `json:"model"`
}

// RootResponse describes the service.
type RootResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Features  []string          `json:"features"`
	Endpoints map[string]string `json:"endpoints"`
}
