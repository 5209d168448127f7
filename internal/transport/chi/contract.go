package chi

import (
	"context"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/request"
	"github.com/kailas-cloud/hybridsearch/internal/usecase/crawl"
	documentuc "github.com/kailas-cloud/hybridsearch/internal/usecase/document"
	healthuc "github.com/kailas-cloud/hybridsearch/internal/usecase/health"
	"github.com/kailas-cloud/hybridsearch/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/hybridsearch/internal/usecase/search"
	statsuc "github.com/kailas-cloud/hybridsearch/internal/usecase/stats"
)

// Searcher answers queries.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (searchuc.Response, error)
}

// Indexer stores directly submitted documents.
type Indexer interface {
	Index(ctx context.Context, rawURL, title, content string) (documentuc.IndexResult, error)
}

// Ingester schedules background ingestion batches.
type Ingester interface {
	Submit(ctx context.Context, urls []string) (*ingest.Task, error)
}

// Enqueuer appends URLs to the crawl queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, urls []string) (crawl.EnqueueResult, error)
}

// StatsReader reports collection statistics.
type StatsReader interface {
	Get(ctx context.Context) (statsuc.Stats, error)
}

// HealthChecker reports dependency health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Services groups the use cases behind the HTTP API.
type Services struct {
	Search  Searcher
	Index   Indexer
	Ingest  Ingester
	Crawl   Enqueuer
	Stats   StatsReader
	Health  HealthChecker
	Encoder domain.Embedder
}
