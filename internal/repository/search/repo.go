package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/kailas-cloud/hybridsearch/internal/db"
	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/result"
	"github.com/kailas-cloud/hybridsearch/internal/repository/index"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo implements the lexical and vector retrievers over one FT index.
type Repo struct {
	store  store
	layout index.Layout
}

// New creates a search repository.
func New(s store, layout index.Layout) *Repo {
	return &Repo{store: s, layout: layout}
}

// Lexical runs a BM25 search over title and content, title weighted higher.
// A query without searchable terms returns no hits.
func (r *Repo) Lexical(ctx context.Context, query string, limit int) ([]result.ScoredDocument, error) {
	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}

	sr, err := r.store.SearchBM25(ctx, &db.TextQuery{
		IndexName:    r.layout.Name(),
		Terms:        terms,
		Fields:       index.TextFields,
		TopK:         limit,
		ReturnFields: index.ReturnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("bm25 %s: %w", r.layout.Name(), classify(err))
	}

	return r.toScored(sr), nil
}

// Vector runs a KNN search; scores are cosine similarities.
func (r *Repo) Vector(ctx context.Context, vector []float32, limit int) ([]result.ScoredDocument, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.layout.Name(),
		VectorField:  index.VectorAlias,
		Vector:       vector,
		K:            limit,
		ReturnFields: index.ReturnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("knn %s: %w", r.layout.Name(), classify(err))
	}

	return r.toScored(sr), nil
}

func (r *Repo) toScored(sr *db.SearchResult) []result.ScoredDocument {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	prefix := r.layout.DocPrefix()
	out := make([]result.ScoredDocument, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		id := e.Fields[index.FieldID]
		if id == "" {
			id = strings.TrimPrefix(e.Key, prefix)
		}
		out = append(out, result.New(
			id,
			e.Fields[index.FieldTitle],
			e.Fields[index.FieldURL],
			e.Fields[index.FieldContent],
			e.Score,
		))
	}
	return out
}

// Tokenize splits a free-text query into lowercase, de-duplicated terms.
func Tokenize(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	seen := make(map[string]struct{}, len(fields))
	terms := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}

func classify(err error) error {
	if errors.Is(err, db.ErrUnavailable) {
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
}
