package document

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/logger"
)

// IndexResult describes a stored submission.
type IndexResult struct {
	ID                 string
	EmbeddingDimension int
}

// Service indexes caller-submitted documents.
type Service struct {
	normalizer *Normalizer
	writer     Writer
}

// New creates a submission service.
func New(normalizer *Normalizer, writer Writer) *Service {
	return &Service{normalizer: normalizer, writer: writer}
}

// Index normalizes, stores and commits one document. The commit is part of
// the request; a failed commit fails the call.
func (s *Service) Index(ctx context.Context, rawURL, title, content string) (IndexResult, error) {
	doc, err := s.normalizer.FromSubmission(ctx, rawURL, title, content)
	if err != nil {
		return IndexResult{}, fmt.Errorf("index: normalize: %w", err)
	}
	if err := s.writer.Upsert(ctx, &doc); err != nil {
		return IndexResult{}, fmt.Errorf("index: upsert: %w", err)
	}
	if err := s.writer.Commit(ctx); err != nil {
		return IndexResult{}, fmt.Errorf("index: commit: %w", err)
	}

	logger.FromContext(ctx).Info("Document indexed",
		zap.String("id", doc.ID),
		zap.String("url", doc.URL),
		zap.Int("content_length", doc.ContentLength),
	)
	return IndexResult{ID: doc.ID, EmbeddingDimension: len(doc.Vector)}, nil
}
