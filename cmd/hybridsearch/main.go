package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/config"
	"github.com/kailas-cloud/hybridsearch/internal/db"
	dbRedis "github.com/kailas-cloud/hybridsearch/internal/db/redis"
	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/hybridsearch/internal/logger"
	"github.com/kailas-cloud/hybridsearch/internal/metrics"
	documentrepo "github.com/kailas-cloud/hybridsearch/internal/repository/document"
	"github.com/kailas-cloud/hybridsearch/internal/repository/embcache"
	"github.com/kailas-cloud/hybridsearch/internal/repository/index"
	queuerepo "github.com/kailas-cloud/hybridsearch/internal/repository/queue"
	searchrepo "github.com/kailas-cloud/hybridsearch/internal/repository/search"
	chiTransport "github.com/kailas-cloud/hybridsearch/internal/transport/chi"
	lcEmb "github.com/kailas-cloud/hybridsearch/internal/transport/langchain"
	openaiEmb "github.com/kailas-cloud/hybridsearch/internal/transport/openai"
	"github.com/kailas-cloud/hybridsearch/internal/transport/web"
	"github.com/kailas-cloud/hybridsearch/internal/usecase/crawl"
	documentuc "github.com/kailas-cloud/hybridsearch/internal/usecase/document"
	embeddinguc "github.com/kailas-cloud/hybridsearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/hybridsearch/internal/usecase/health"
	"github.com/kailas-cloud/hybridsearch/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/hybridsearch/internal/usecase/search"
	statsuc "github.com/kailas-cloud/hybridsearch/internal/usecase/stats"
	"github.com/kailas-cloud/hybridsearch/internal/version"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting hybridsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Strings("queue_addrs", cfg.Queue.Addrs),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Index store
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
		Name:     "hybridsearch-index",
	})
	if err != nil {
		logger.Fatal("Failed to create index store", zap.Error(err))
	}
	defer store.Close()

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		logger.Fatal("Index store not ready", zap.Error(err))
	}
	logger.Info("Connected to index store")

	// Queue store; shares the index connection when pointed at the same server.
	queueStore, err := openQueueStore(ctx, cfg, store, readiness)
	if err != nil {
		logger.Fatal("Queue store unavailable", zap.Error(err))
	}
	if queueStore != store {
		defer queueStore.Close()
	}

	// Register collectors explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterServiceMetrics()

	// Index bootstrap
	dim := cfg.Embedding.Dimensions
	layout := index.NewLayout(cfg.Index.KeyPrefix)
	hnsw := index.HNSW{M: cfg.Index.HNSWM, EFConstruct: cfg.Index.HNSWEFConstruct}
	if err := index.Ensure(ctx, store, layout, dim, hnsw, logger); err != nil {
		logger.Fatal("Failed to ensure search index", zap.Error(err))
	}

	// Embedder chain: provider -> cache -> instrumented -> readiness gate
	base, err := buildProvider(cfg.Embedding, logger)
	if err != nil {
		logger.Fatal("Failed to create embedding provider", zap.Error(err))
	}
	gate := buildEmbedder(cfg, base, store, logger)
	go warmup(ctx, gate, time.Duration(cfg.Embedding.WarmupRetrySec)*time.Second, logger)

	docEmbedder := domain.NewInstructionEmbedder(gate, cfg.Embedding.DocumentInstruction)
	queryEmbedder := domain.NewInstructionEmbedder(gate, cfg.Embedding.QueryInstruction)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", dim),
	)

	// Repositories
	docRepo := documentrepo.New(store, layout, db.CommitOptions{
		Replicas: cfg.Index.CommitReplicas,
		Timeout:  time.Duration(cfg.Index.CommitTimeoutMs) * time.Millisecond,
		AOF:      cfg.Index.CommitAOF,
	})
	searchRepo := searchrepo.New(store, layout)
	queueRepo := queuerepo.New(queueStore, cfg.Queue.Key)

	// Use cases
	searchSvc := searchuc.New(searchRepo, searchRepo, queryEmbedder, searchuc.Options{
		Weights:      fusionWeights(cfg.Search.Fusion),
		SnippetRunes: cfg.Search.SnippetRunes,
		Dimensions:   dim,
	})

	normalizer := documentuc.NewNormalizer(docEmbedder, documentuc.NormalizerConfig{
		Dimensions:      dim,
		MinContentRunes: cfg.Ingest.MinContentRunes,
		MaxContentRunes: cfg.Ingest.MaxContentRunes,
	})
	docSvc := documentuc.New(normalizer, docRepo)

	scraper := web.NewScraper(web.NewFetcher(web.FetcherConfig{
		Timeout:      time.Duration(cfg.Ingest.FetchTimeoutSec) * time.Second,
		UserAgent:    cfg.Ingest.UserAgent,
		MaxBodyBytes: cfg.Ingest.MaxBodyBytes,
	}))
	pipeline := ingest.NewPipeline(scraper, normalizer, docRepo,
		time.Duration(cfg.Ingest.PolitenessMs)*time.Millisecond)
	runner, err := ingest.NewRunner(pipeline, cfg.Ingest.Workers, logger)
	if err != nil {
		logger.Fatal("Failed to create ingestion runner", zap.Error(err))
	}

	crawlSvc := crawl.New(queueRepo)
	if w := cfg.Queue.Worker; w.Enabled {
		worker := crawl.NewWorker(queueRepo, runner,
			time.Duration(w.PollIntervalSec)*time.Second, w.BatchSize, logger)
		go worker.Run(ctx)
	}

	statsSvc := statsuc.New(docRepo, queueRepo, cfg.Embedding.Model, dim)
	healthSvc := healthuc.New(store, queueStore, gate)

	// HTTP
	server := chiTransport.NewServer(chiTransport.Services{
		Search:  searchSvc,
		Index:   docSvc,
		Ingest:  runner,
		Crawl:   crawlSvc,
		Stats:   statsSvc,
		Health:  healthSvc,
		Encoder: gate,
	}, chiTransport.Options{
		Limits: request.Limits{
			DefaultRows:       cfg.Search.DefaultRows,
			MaxRows:           cfg.Search.MaxRows,
			DefaultRerankDocs: cfg.Search.DefaultRerankDocs,
			MaxRerankDocs:     cfg.Search.MaxRerankDocs,
		},
		Model: cfg.Embedding.Model,
	}, logger)

	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{APIKeys: cfg.Auth.APIKeys}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")
	stop()

	shutdown := time.Duration(cfg.HTTP.ShutdownSec) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdown)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if err := runner.Release(shutdown); err != nil {
		logger.Warn("Ingestion batches still running at exit",
			zap.Int("running", runner.Running()),
			zap.Error(err),
		)
	}

	logger.Info("Server stopped gracefully")
}

func openQueueStore(ctx context.Context, cfg config.Config, index *dbRedis.Store, readiness time.Duration) (*dbRedis.Store, error) {
	if slices.Equal(cfg.Queue.Addrs, cfg.Database.Addrs) && cfg.Queue.Password == cfg.Database.Password {
		return index, nil
	}
	qs, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Queue.Addrs,
		Password: cfg.Queue.Password,
		Name:     "hybridsearch-queue",
	})
	if err != nil {
		return nil, fmt.Errorf("create queue store: %w", err)
	}
	if err := qs.WaitForReady(ctx, readiness); err != nil {
		qs.Close()
		return nil, fmt.Errorf("queue store not ready: %w", err)
	}
	return qs, nil
}

// buildProvider creates the base embedding client for the configured provider.
func buildProvider(cfg config.EmbeddingConfig, logger *zap.Logger) (domain.Embedder, error) {
	switch cfg.Provider {
	case "langchain":
		e, err := lcEmb.NewEmbedder(&lcEmb.Config{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			Dimensions:     cfg.Dimensions,
			SendDimensions: cfg.SendDimensions,
			Logger:         logger,
		}), nil
	}
}

// buildEmbedder assembles the decorator chain: provider -> Cached -> Instrumented -> Gate.
// Instruction prefixes are applied outside the gate so the cache key includes them.
func buildEmbedder(cfg config.Config, base domain.Embedder, store *dbRedis.Store, logger *zap.Logger) *embeddinguc.Gate {
	var embedder domain.Embedder = embcache.New(base, store, embcache.Options{
		Prefix:     cfg.Index.KeyPrefix,
		Model:      cfg.Embedding.Model,
		TTL:        time.Duration(cfg.Embedding.CacheTTLSec) * time.Second,
		Dimensions: cfg.Embedding.Dimensions,
	}, metrics.EmbeddingCacheTotal, logger)

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Embedding.Provider, cfg.Embedding.Model, logger)

	return embeddinguc.NewGate(embedder, cfg.Embedding.Dimensions, logger)
}

// warmup opens the gate, retrying until the model answers with the expected dimension.
func warmup(ctx context.Context, gate *embeddinguc.Gate, interval time.Duration, logger *zap.Logger) {
	if err := gate.WarmupUntilReady(ctx, interval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Embedding model will stay unavailable", zap.Error(err))
	}
}

func fusionWeights(f config.FusionConfig) searchuc.Weights {
	if !f.OverrideWeights {
		return searchuc.DefaultWeights()
	}
	return searchuc.Weights{
		LexicalOnly: f.LexicalOnly,
		BothLexical: f.BothLexical,
		BothVector:  f.BothVector,
		VectorOnly:  f.VectorOnly,
	}
}
