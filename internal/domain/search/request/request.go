package request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/mode"
)

// MaxQueryLength is the maximum allowed search query length in runes.
const MaxQueryLength = 1024

// Limits bounds the row counts a request may ask for.
type Limits struct {
	DefaultRows       int
	MaxRows           int
	DefaultRerankDocs int
	MaxRerankDocs     int
}

// DefaultLimits mirrors the service defaults (rows 10, rerank 20).
func DefaultLimits() Limits {
	return Limits{DefaultRows: 10, MaxRows: 100, DefaultRerankDocs: 20, MaxRerankDocs: 200}
}

// Request is a validated search query. Immutable once built.
type Request struct {
	query      string
	searchMode mode.Mode
	rows       int
	rerankDocs int
}

// New validates and normalizes search parameters.
// Zero rows/rerankDocs take the defaults; an empty mode means fused.
func New(query string, m mode.Mode, rows, rerankDocs int, lim Limits) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	if m == "" {
		m = mode.Fused
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("%w: %q", domain.ErrInvalidMode, m)
	}

	if rows == 0 {
		rows = lim.DefaultRows
	}
	if rows < 1 || rows > lim.MaxRows {
		return Request{}, fmt.Errorf("%w: rows must be between 1 and %d", domain.ErrInvalidRequest, lim.MaxRows)
	}
	if rerankDocs == 0 {
		rerankDocs = lim.DefaultRerankDocs
	}
	if rerankDocs < 1 || rerankDocs > lim.MaxRerankDocs {
		return Request{}, fmt.Errorf("%w: rerank_docs must be between 1 and %d",
			domain.ErrInvalidRequest, lim.MaxRerankDocs)
	}

	return Request{
		query:      query,
		searchMode: m,
		rows:       rows,
		rerankDocs: rerankDocs,
	}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// Mode returns the retrieval strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Rows returns the maximum number of results to return.
func (r *Request) Rows() int { return r.rows }

// RerankDocs returns how many candidates each retriever contributes to fusion.
func (r *Request) RerankDocs() int { return r.rerankDocs }
