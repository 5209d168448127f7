package crawl

import (
	"context"

	"github.com/kailas-cloud/hybridsearch/internal/usecase/ingest"
)

// Queue is the crawl work list.
type Queue interface {
	Enqueue(ctx context.Context, urls []string) (int64, error)
	Len(ctx context.Context) (int64, error)
	Pop(ctx context.Context, n int) ([]string, error)
}

// Submitter hands a batch to background ingestion.
type Submitter interface {
	Submit(ctx context.Context, urls []string) (*ingest.Task, error)
}
