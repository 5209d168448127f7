package ingest

import (
	"context"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
)

// Scraper fetches a source and extracts its readable text.
type Scraper interface {
	Scrape(ctx context.Context, rawURL string) (domain.ExtractedPage, error)
}

// Normalizer turns extracted text into an indexable document.
type Normalizer interface {
	FromExtraction(ctx context.Context, rawURL, title, rawText string) (domain.IndexableDocument, error)
}

// Writer persists documents and commits a batch.
type Writer interface {
	Upsert(ctx context.Context, doc *domain.IndexableDocument) error
	Commit(ctx context.Context) error
}
