package document

import (
	"context"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
)

// Embedder vectorizes document text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Writer persists normalized documents.
type Writer interface {
	Upsert(ctx context.Context, doc *domain.IndexableDocument) error
	Commit(ctx context.Context) error
}
