// Package crawl schedules URLs onto the shared crawl queue.
package crawl

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/logger"
	"github.com/kailas-cloud/hybridsearch/internal/metrics"
)

// EnqueueResult reports a push onto the queue.
type EnqueueResult struct {
	Appended int
	Length   int64
}

// Service appends URLs for external crawl workers.
type Service struct {
	queue Queue
}

// New creates a crawl Service.
func New(q Queue) *Service {
	return &Service{queue: q}
}

// Enqueue appends urls in order. Duplicates are kept. An empty list only
// reports the current length.
func (s *Service) Enqueue(ctx context.Context, urls []string) (EnqueueResult, error) {
	if len(urls) == 0 {
		n, err := s.queue.Len(ctx)
		if err != nil {
			return EnqueueResult{}, fmt.Errorf("enqueue: %w", err)
		}
		return EnqueueResult{Length: n}, nil
	}

	n, err := s.queue.Enqueue(ctx, urls)
	if err != nil {
		return EnqueueResult{}, fmt.Errorf("enqueue: %w", err)
	}
	metrics.QueueEnqueuedTotal.Add(float64(len(urls)))

	logger.FromContext(ctx).Info("URLs added to crawl queue",
		zap.Int("appended", len(urls)),
		zap.Int64("queue_length", n),
	)
	return EnqueueResult{Appended: len(urls), Length: n}, nil
}

// Len returns the number of pending URLs.
func (s *Service) Len(ctx context.Context) (int64, error) {
	n, err := s.queue.Len(ctx)
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}
