package search

import (
	"context"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/result"
)

// LexicalRetriever ranks documents by term relevance (BM25).
type LexicalRetriever interface {
	Lexical(ctx context.Context, query string, limit int) ([]result.ScoredDocument, error)
}

// VectorRetriever ranks documents by similarity to a query vector.
type VectorRetriever interface {
	Vector(ctx context.Context, vector []float32, limit int) ([]result.ScoredDocument, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
