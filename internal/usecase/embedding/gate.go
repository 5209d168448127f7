package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/metrics"
)

const warmupProbe = "hybrid search warmup"

// Gate reports the embedding capability as unavailable until a warmup probe
// returned a vector of the configured dimension. A nil inner embedder keeps
// the gate closed forever.
type Gate struct {
	inner  domain.Embedder
	dim    int
	ready  atomic.Bool
	logger *zap.Logger
}

// NewGate creates a closed gate.
func NewGate(inner domain.Embedder, dim int, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{inner: inner, dim: dim, logger: logger}
}

// Ready reports whether the warmup probe succeeded.
func (g *Gate) Ready() bool { return g.ready.Load() }

// Dimensions returns the vector size the gate enforces.
func (g *Gate) Dimensions() int { return g.dim }

// Warmup embeds a probe text once and opens the gate on success.
func (g *Gate) Warmup(ctx context.Context) error {
	if g.inner == nil {
		return fmt.Errorf("warmup: no embedder configured: %w", domain.ErrEmbeddingUnavailable)
	}

	res, err := g.inner.Embed(ctx, warmupProbe)
	if err != nil {
		return fmt.Errorf("warmup: %w", err)
	}
	if len(res.Embedding) != g.dim {
		return fmt.Errorf("warmup: model returned %d dimensions, index expects %d: %w",
			len(res.Embedding), g.dim, domain.ErrVectorDimMismatch)
	}

	if !g.ready.Swap(true) {
		metrics.EmbeddingReady.Set(1)
		g.logger.Info("Embedding model ready", zap.Int("dimension", g.dim))
	}
	return nil
}

// WarmupUntilReady retries Warmup every interval until it succeeds, the
// model reports a dimension mismatch (not retryable), or ctx ends.
func (g *Gate) WarmupUntilReady(ctx context.Context, interval time.Duration) error {
	for {
		err := g.Warmup(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrVectorDimMismatch) || g.inner == nil {
			g.logger.Error("Embedding model unusable", zap.Error(err))
			return err
		}
		g.logger.Warn("Embedding model not ready", zap.Duration("retry_in", interval), zap.Error(err))

		select {
		case <-ctx.Done():
			return fmt.Errorf("warmup: %w", ctx.Err())
		case <-time.After(interval):
		}
	}
}

// Embed rejects calls while the gate is closed.
func (g *Gate) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if !g.Ready() {
		return domain.EmbeddingResult{}, domain.ErrEmbeddingUnavailable
	}
	res, err := g.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err //nolint:wrapcheck // decorators above wrap
	}
	return res, nil
}

// HealthCheck fails while closed, otherwise probes the provider.
func (g *Gate) HealthCheck(ctx context.Context) error {
	if !g.Ready() {
		return domain.ErrEmbeddingUnavailable
	}
	if hc, ok := g.inner.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health: %w", err)
		}
	}
	return nil
}
