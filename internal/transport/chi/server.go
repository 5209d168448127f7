// Package chi exposes the search and ingestion use cases over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/request"
	searchuc "github.com/kailas-cloud/hybridsearch/internal/usecase/search"
	"github.com/kailas-cloud/hybridsearch/internal/version"
)

// maxURLsPerRequest bounds /scrape and /crawl payloads.
const maxURLsPerRequest = 1000

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Options carries request bounds and reported metadata.
type Options struct {
	Limits request.Limits
	Model  string
}

// Server implements the HTTP handlers.
type Server struct {
	svc           Services
	opts          Options
	logger        *zap.Logger
	metrics       http.Handler
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, opts Options, logger *zap.Logger) *Server {
	if opts.Limits == (request.Limits{}) {
		opts.Limits = request.DefaultLimits()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		svc:     svc,
		opts:    opts,
		logger:  logger,
		metrics: promhttp.Handler(),
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidMode, http.StatusBadRequest, CodeInvalidMode),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrEmbeddingUnavailable, http.StatusServiceUnavailable, CodeEmbeddingNotReady),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, CodeIndexUnavailable),
		sentinelHandler(domain.ErrQueueUnavailable, http.StatusServiceUnavailable, CodeQueueUnavailable),
		sentinelHandler(domain.ErrIngestBusy, http.StatusServiceUnavailable, CodeIngestBusy),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadGateway, CodeVectorDimMismatch),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProvider),
		sentinelHandler(domain.ErrMalformedResponse, http.StatusBadGateway, CodeMalformedUpstream),
	}
	return s
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	wire := req.Mode
	if wire == "" {
		wire = req.SearchType
	}
	s.search(w, r, req.Query, wire, req.Rows, req.RerankDocs)
}

// SearchGet handles GET /search.
func (s *Server) SearchGet(w http.ResponseWriter, r *http.Request) {
	var params SearchParams
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "q", q, &params.Q); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid parameter q: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "mode", q, &params.Mode); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid parameter mode: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "rows", q, &params.Rows); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid parameter rows: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "rerank_docs", q, &params.RerankDocs); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid parameter rerank_docs: "+err.Error())
		return
	}

	s.search(w, r, params.Q, deref(params.Mode), deref(params.Rows), deref(params.RerankDocs))
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, query, wireMode string, rows, rerank int) {
	m, err := mode.Parse(wireMode, mode.Fused)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	req, err := request.New(query, m, rows, rerank, s.opts.Limits)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp, err := s.svc.Search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	searchType := wireMode
	if searchType == "" {
		searchType = string(resp.Mode)
	}
	writeJSON(w, http.StatusOK, searchResponseToDTO(resp, searchType))
}

// Index handles POST /index.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	var req IndexRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "url is required")
		return
	}

	res, err := s.svc.Index.Index(r.Context(), req.URL, req.Title, req.Content)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, IndexResponse{
		Message:            "Document indexed successfully",
		ID:                 res.ID,
		EmbeddingDimension: res.EmbeddingDimension,
	})
}

// Scrape handles POST /scrape. The batch runs after the response is sent.
func (s *Server) Scrape(w http.ResponseWriter, r *http.Request) {
	urls, ok := decodeURLs(w, r, false)
	if !ok {
		return
	}

	task, err := s.svc.Ingest.Submit(r.Context(), urls)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, ScrapeResponse{
		Message: fmt.Sprintf("Started scraping %d URLs", len(urls)),
		URLs:    urls,
		TaskID:  task.ID,
	})
}

// Crawl handles POST /crawl.
func (s *Server) Crawl(w http.ResponseWriter, r *http.Request) {
	urls, ok := decodeURLs(w, r, true)
	if !ok {
		return
	}

	res, err := s.svc.Crawl.Enqueue(r.Context(), urls)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CrawlResponse{
		Message:     fmt.Sprintf("Added %d URLs to crawl queue", res.Appended),
		QueueLength: res.Length,
		URLs:        urls,
	})
}

// Stats handles GET /stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Stats.Get(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		DocumentsIndexed: st.DocumentsIndexed,
		CrawlQueueLength: st.CrawlQueueLength,
		EmbeddingModel:   st.EmbeddingModel,
		VectorDimension:  st.VectorDimension,
	})
}

// HealthCheck handles GET /health. It answers 200 even when every
// dependency is down.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())

	services := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		services[k] = string(v)
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   string(report.Status),
		Services: services,
	})
}

// Encode handles POST /encode.
func (s *Server) Encode(w http.ResponseWriter, r *http.Request) {
	var req EncodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "text is required")
		return
	}
	if s.svc.Encoder == nil {
		s.handleDomainError(w, domain.ErrEmbeddingUnavailable)
		return
	}

	res, err := s.svc.Encoder.Embed(r.Context(), req.Text)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, EncodeResponse{
		Embedding: res.Embedding,
		Dimension: len(res.Embedding),
		Model:     s.opts.Model,
	})
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Message: "Hybrid Search API",
		Version: version.Version,
		Features: []string{
			"BM25 keyword search",
			"Vector semantic search (" + s.opts.Model + ")",
			"Hybrid search with normalized score fusion",
			"Web scraping and background ingestion",
			"Manual document indexing",
		},
		Endpoints: map[string]string{
			"search": "POST /search - Main search endpoint (GET /search?q= also accepted)",
			"scrape": "POST /scrape - Scrape and index URLs",
			"index":  "POST /index - Index single document",
			"crawl":  "POST /crawl - Add URLs to crawl queue",
			"stats":  "GET /stats - Collection statistics",
			"health": "GET /health - Service health check",
			"encode": "POST /encode - Embed a text",
		},
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func decodeURLs(w http.ResponseWriter, r *http.Request, allowEmpty bool) ([]string, bool) {
	var req URLsRequest
	if !decodeBody(w, r, &req) {
		return nil, false
	}
	if len(req.URLs) == 0 && !allowEmpty {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "urls is required")
		return nil, false
	}
	if len(req.URLs) > maxURLsPerRequest {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("too many urls (max %d)", maxURLsPerRequest))
		return nil, false
	}
	for _, u := range req.URLs {
		if strings.TrimSpace(u) == "" {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, "urls must not contain empty entries")
			return nil, false
		}
	}
	if req.URLs == nil {
		req.URLs = []string{}
	}
	return req.URLs, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidMode,
		domain.ErrInvalidRequest,
		domain.ErrEmbeddingUnavailable,
		domain.ErrIndexUnavailable,
		domain.ErrQueueUnavailable,
		domain.ErrIngestBusy,
		domain.ErrVectorDimMismatch,
		domain.ErrEmbeddingProviderError,
		domain.ErrMalformedResponse,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			// Validation messages carry the offending field.
			if s == domain.ErrInvalidRequest || s == domain.ErrInvalidMode {
				return validationMessage(err)
			}
			return s.Error()
		}
	}
	return "internal error"
}

// validationMessage keeps the innermost "sentinel: detail" text.
func validationMessage(err error) string {
	msg := err.Error()
	for _, s := range []error{domain.ErrInvalidRequest, domain.ErrInvalidMode} {
		if i := strings.Index(msg, s.Error()); i >= 0 {
			return msg[i:]
		}
	}
	return msg
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			s.logger.Warn("domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func searchResponseToDTO(resp searchuc.Response, searchType string) SearchResponse {
	items := make([]SearchResultItem, len(resp.Results))
	for i := range resp.Results {
		r := &resp.Results[i]
		items[i] = SearchResultItem{
			ID:       r.ID(),
			Title:    r.Title(),
			URL:      r.URL(),
			Content:  r.Content(),
			Score:    r.Score(),
			Features: r.Features(),
		}
	}
	return SearchResponse{
		Query:      resp.Query,
		SearchType: searchType,
		Mode:       string(resp.Mode),
		TotalFound: resp.TotalFound,
		Results:    items,
		QueryTime:  resp.QueryTime,
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
