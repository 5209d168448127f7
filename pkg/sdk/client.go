package sdk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/db"
	dbRedis "github.com/kailas-cloud/hybridsearch/internal/db/redis"
	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/request"
	"github.com/kailas-cloud/hybridsearch/internal/logger"
	documentrepo "github.com/kailas-cloud/hybridsearch/internal/repository/document"
	"github.com/kailas-cloud/hybridsearch/internal/repository/index"
	queuerepo "github.com/kailas-cloud/hybridsearch/internal/repository/queue"
	searchrepo "github.com/kailas-cloud/hybridsearch/internal/repository/search"
	"github.com/kailas-cloud/hybridsearch/internal/transport/web"
	"github.com/kailas-cloud/hybridsearch/internal/usecase/crawl"
	documentuc "github.com/kailas-cloud/hybridsearch/internal/usecase/document"
	healthuc "github.com/kailas-cloud/hybridsearch/internal/usecase/health"
	"github.com/kailas-cloud/hybridsearch/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/hybridsearch/internal/usecase/search"
	statsuc "github.com/kailas-cloud/hybridsearch/internal/usecase/stats"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultDimensions       = 384
	defaultEmbeddingModel   = "all-MiniLM-L6-v2"
)

// Internal interfaces, swapped for fakes in tests.
type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) (searchuc.Response, error)
}

type indexUseCase interface {
	Index(ctx context.Context, rawURL, title, content string) (documentuc.IndexResult, error)
}

type ingestUseCase interface {
	Run(ctx context.Context, urls []string) ingest.Report
}

type crawlUseCase interface {
	Enqueue(ctx context.Context, urls []string) (crawl.EnqueueResult, error)
}

type statsUseCase interface {
	Get(ctx context.Context) (statsuc.Stats, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the hybridsearch SDK entry point.
type Client struct {
	store     db.Store
	searchSvc searchUseCase
	indexSvc  indexUseCase
	ingestSvc ingestUseCase
	crawlSvc  crawlUseCase
	statsSvc  statsUseCase
	healthSvc healthUseCase
	logger    *zap.Logger
	obs       *observer
}

// New creates a Client, connects to Redis and makes sure the search index exists.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		dimensions:     defaultDimensions,
		embeddingModel: defaultEmbeddingModel,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("sdk: redis address required (use WithRedis)")
	}
	if cfg.dimensions <= 0 {
		return nil, fmt.Errorf("sdk: dimensions must be positive, got %d", cfg.dimensions)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("sdk: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("sdk: database not ready: %w", err)
	}

	log := cfg.logger
	if log == nil {
		log = zap.NewNop()
	}
	layout := index.NewLayout(cfg.keyPrefix)
	if err := index.Ensure(ctx, store, layout, cfg.dimensions, index.HNSW{}, log); err != nil {
		store.Close()
		return nil, fmt.Errorf("sdk: %w", err)
	}

	return wireClient(store, layout, cfg, obs), nil
}

func wireClient(store db.Store, layout index.Layout, cfg *clientConfig, obs *observer) *Client {
	docRepo := documentrepo.New(store, layout, db.CommitOptions{})
	searchRepo := searchrepo.New(store, layout)
	queueRepo := queuerepo.New(store, cfg.queueKey)

	// Embedder: noop when not set (lexical search works, the rest reports unavailable)
	var emb interface {
		domain.Embedder
		domain.HealthChecker
	} = noopEmbedder{}
	if cfg.embedder != nil {
		emb = &embedderAdapter{inner: cfg.embedder}
	}

	normalizer := documentuc.NewNormalizer(emb, documentuc.NormalizerConfig{Dimensions: cfg.dimensions})
	scraper := web.NewScraper(web.NewFetcher(web.FetcherConfig{}))

	log := cfg.logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		store:     store,
		searchSvc: searchuc.New(searchRepo, searchRepo, emb, searchuc.Options{Dimensions: cfg.dimensions}),
		indexSvc:  documentuc.New(normalizer, docRepo),
		ingestSvc: ingest.NewPipeline(scraper, normalizer, docRepo, cfg.politeness),
		crawlSvc:  crawl.New(queueRepo),
		statsSvc:  statsuc.New(docRepo, queueRepo, cfg.embeddingModel, cfg.dimensions),
		healthSvc: healthuc.New(store, store, emb),
		logger:    log,
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Search runs a lexical, vector or fused query.
func (c *Client) Search(ctx context.Context, q Query) (resp SearchResponse, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("search", start, err, zap.String("mode", string(q.Mode)), zap.Int("results", len(resp.Results)))
	}()

	m, err := mode.Parse(string(q.Mode), mode.Fused)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}
	req, err := request.New(q.Text, m, q.Rows, q.RerankDocs, request.DefaultLimits())
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}

	r, err := c.searchSvc.Search(c.ctx(ctx), &req)
	if err != nil {
		return SearchResponse{}, err
	}
	return searchResponseFromUC(r), nil
}

// Index embeds and stores one document, then commits it.
func (c *Client) Index(ctx context.Context, rawURL, title, content string) (res IndexResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index", start, err) }()

	r, err := c.indexSvc.Index(c.ctx(ctx), rawURL, title, content)
	if err != nil {
		return IndexResult{}, err
	}
	return IndexResult{ID: r.ID, EmbeddingDimension: r.EmbeddingDimension}, nil
}

// Ingest fetches, extracts and indexes urls in order and blocks until the
// batch is committed. A failing URL never aborts the batch; check the
// report for per-URL outcomes.
func (c *Client) Ingest(ctx context.Context, urls []string) (rep IngestReport, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("ingest", start, err,
			zap.Int("indexed", rep.Indexed), zap.Int("skipped", rep.Skipped), zap.Int("failed", rep.Failed))
	}()

	if len(urls) == 0 {
		return IngestReport{}, fmt.Errorf("ingest: %w: no urls", domain.ErrInvalidRequest)
	}
	r := c.ingestSvc.Run(c.ctx(ctx), urls)
	if r.CommitErr != nil {
		c.logger.Warn("Ingest batch not committed", zap.Error(r.CommitErr))
	}
	return ingestReportFromUC(r), nil
}

// Enqueue appends urls to the crawl queue for external workers.
func (c *Client) Enqueue(ctx context.Context, urls []string) (res EnqueueResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("enqueue", start, err, zap.Int("urls", len(urls))) }()

	r, err := c.crawlSvc.Enqueue(c.ctx(ctx), urls)
	if err != nil {
		return EnqueueResult{}, err
	}
	return EnqueueResult{Appended: r.Appended, QueueLength: r.Length}, nil
}

// Stats reports the collection size and crawl queue length.
func (c *Client) Stats(ctx context.Context) (st Stats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("stats", start, err) }()

	s, err := c.statsSvc.Get(c.ctx(ctx))
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		DocumentsIndexed: s.DocumentsIndexed,
		CrawlQueueLength: s.CrawlQueueLength,
		EmbeddingModel:   s.EmbeddingModel,
		VectorDimension:  s.VectorDimension,
	}, nil
}

// Health checks the index, the queue and the embedder independently.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(c.ctx(ctx))
	services := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		services[k] = string(v)
	}
	return HealthStatus{
		Status:   string(report.Status),
		Services: services,
	}
}

// ctx attaches the SDK logger for the internal layers.
func (c *Client) ctx(ctx context.Context) context.Context {
	if c.logger == nil {
		return ctx
	}
	return logger.ContextWithLogger(ctx, c.logger)
}

func searchResponseFromUC(r searchuc.Response) SearchResponse {
	results := make([]Result, len(r.Results))
	for i := range r.Results {
		f := &r.Results[i]
		results[i] = Result{
			ID:       f.ID(),
			Title:    f.Title(),
			URL:      f.URL(),
			Content:  f.Content(),
			Score:    f.Score(),
			Features: f.Features(),
		}
	}
	return SearchResponse{
		Query:      r.Query,
		Mode:       SearchMode(r.Mode),
		TotalFound: r.TotalFound,
		Results:    results,
		QueryTime:  time.Duration(r.QueryTime * float64(time.Second)),
	}
}

func ingestReportFromUC(r ingest.Report) IngestReport {
	outcomes := make([]SourceOutcome, len(r.Outcomes))
	for i, o := range r.Outcomes {
		outcomes[i] = SourceOutcome{URL: o.URL, ID: o.ID, Status: string(o.Status), Err: o.Err}
	}
	return IngestReport{
		Total:     r.Total,
		Indexed:   r.Indexed,
		Skipped:   r.Skipped,
		Failed:    r.Failed,
		Committed: r.Committed,
		CommitErr: r.CommitErr,
		Outcomes:  outcomes,
		Duration:  r.Duration,
	}
}
