// Package stats reports collection size and configuration.
package stats

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/logger"
)

// DocumentCounter counts indexed documents.
type DocumentCounter interface {
	Count(ctx context.Context) (int, error)
}

// QueueLener reports pending crawl URLs.
type QueueLener interface {
	Len(ctx context.Context) (int64, error)
}

// Stats is a point-in-time snapshot.
type Stats struct {
	DocumentsIndexed int
	CrawlQueueLength int64
	EmbeddingModel   string
	VectorDimension  int
}

// Service assembles Stats.
type Service struct {
	docs  DocumentCounter
	queue QueueLener
	model string
	dim   int
}

// New creates a stats Service. queue can be nil.
func New(docs DocumentCounter, queue QueueLener, model string, dim int) *Service {
	return &Service{docs: docs, queue: queue, model: model, dim: dim}
}

// Get fails only when the document count is unavailable; a queue failure
// reports length 0.
func (s *Service) Get(ctx context.Context) (Stats, error) {
	n, err := s.docs.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count documents: %w", err)
	}

	var qlen int64
	if s.queue != nil {
		if qlen, err = s.queue.Len(ctx); err != nil {
			logger.FromContext(ctx).Warn("Crawl queue length unavailable", zap.Error(err))
			qlen = 0
		}
	}

	return Stats{
		DocumentsIndexed: n,
		CrawlQueueLength: qlen,
		EmbeddingModel:   s.model,
		VectorDimension:  s.dim,
	}, nil
}
