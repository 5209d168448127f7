package sdk

import (
	"context"

	"github.com/kailas-cloud/hybridsearch/internal/domain/search/request"
	"github.com/kailas-cloud/hybridsearch/internal/usecase/crawl"
	documentuc "github.com/kailas-cloud/hybridsearch/internal/usecase/document"
	healthuc "github.com/kailas-cloud/hybridsearch/internal/usecase/health"
	"github.com/kailas-cloud/hybridsearch/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/hybridsearch/internal/usecase/search"
	statsuc "github.com/kailas-cloud/hybridsearch/internal/usecase/stats"
)

type mockSearchUC struct {
	fn func(ctx context.Context, req *request.Request) (searchuc.Response, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) (searchuc.Response, error) {
	return m.fn(ctx, req)
}

type mockIndexUC struct {
	fn func(ctx context.Context, rawURL, title, content string) (documentuc.IndexResult, error)
}

func (m *mockIndexUC) Index(ctx context.Context, rawURL, title, content string) (documentuc.IndexResult, error) {
	return m.fn(ctx, rawURL, title, content)
}

type mockIngestUC struct {
	fn func(ctx context.Context, urls []string) ingest.Report
}

func (m *mockIngestUC) Run(ctx context.Context, urls []string) ingest.Report { return m.fn(ctx, urls) }

type mockCrawlUC struct {
	fn func(ctx context.Context, urls []string) (crawl.EnqueueResult, error)
}

func (m *mockCrawlUC) Enqueue(ctx context.Context, urls []string) (crawl.EnqueueResult, error) {
	return m.fn(ctx, urls)
}

type mockStatsUC struct {
	fn func(ctx context.Context) (statsuc.Stats, error)
}

func (m *mockStatsUC) Get(ctx context.Context) (statsuc.Stats, error) { return m.fn(ctx) }

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}
