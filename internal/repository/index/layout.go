// Package index owns the key layout and FT schema of the document collection.
package index

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/db"
)

// Hash field names of a stored document.
const (
	FieldID            = "id"
	FieldURL           = "url"
	FieldTitle         = "title"
	FieldContent       = "content"
	FieldVector        = "content_vector"
	FieldDomain        = "domain"
	FieldCrawlDate     = "crawl_date"
	FieldCrawlTS       = "crawl_ts"
	FieldPageRank      = "page_rank"
	FieldContentLength = "content_length"

	// VectorAlias is the query-side name of the vector field.
	VectorAlias = "vector"
	// TitleWeight boosts title matches over body matches in BM25.
	TitleWeight = 3.0
	// Language drives stemming of title and content terms.
	Language = "english"
)

// TextFields are the BM25-searchable fields.
var TextFields = []string{FieldTitle, FieldContent}

// ReturnFields are loaded for every search hit.
var ReturnFields = []string{FieldID, FieldTitle, FieldURL, FieldContent}

// Layout derives key names from a prefix.
type Layout struct {
	Prefix string
}

// NewLayout creates a layout; an empty prefix defaults to "hs:".
func NewLayout(prefix string) Layout {
	if prefix == "" {
		prefix = "hs:"
	}
	return Layout{Prefix: prefix}
}

// Name returns the FT index name.
func (l Layout) Name() string { return l.Prefix + "docs:idx" }

// DocPrefix returns the key prefix covered by the index.
func (l Layout) DocPrefix() string { return l.Prefix + "doc:" }

// DocKey returns the hash key of a document id.
func (l Layout) DocKey(id string) string { return l.DocPrefix() + id }

// HNSW holds vector graph build parameters.
type HNSW struct {
	M           int
	EFConstruct int
}

// Definition builds the FT schema for documents with dim-sized vectors.
func (l Layout) Definition(dim int, hnsw HNSW) (*db.IndexDefinition, error) {
	def, err := db.NewIndex(l.Name()).
		Prefix(l.DocPrefix()).
		Language(Language).
		Text(FieldTitle, TitleWeight).
		Text(FieldContent, 1).
		Tag(FieldDomain).
		Tag(FieldURL).
		Numeric(FieldPageRank, true).
		Numeric(FieldContentLength, false).
		Numeric(FieldCrawlTS, true).
		VectorHNSW(FieldVector, VectorAlias, dim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build index definition: %w", err)
	}
	return def, nil
}

// manager is the consumer interface for index bootstrap (ISP).
type manager interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Ensure creates the index when missing. An existing index is left untouched,
// including its vector dimension.
func Ensure(ctx context.Context, m manager, l Layout, dim int, hnsw HNSW, logger *zap.Logger) error {
	exists, err := m.IndexExists(ctx, l.Name())
	if err != nil {
		return fmt.Errorf("probe index %s: %w", l.Name(), err)
	}
	if exists {
		logger.Debug("Search index present", zap.String("index", l.Name()))
		return nil
	}

	def, err := l.Definition(dim, hnsw)
	if err != nil {
		return err
	}
	if err := m.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", l.Name(), err)
	}

	logger.Info("Search index created",
		zap.String("index", l.Name()),
		zap.Int("dimension", dim),
		zap.String("schema", def.String()),
	)
	return nil
}
