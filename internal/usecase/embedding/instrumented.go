// Package embedding holds the embedder decorators shared by indexing and search.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/logger"
)

// InstrumentedEmbedder logs every embedding call with provider and model.
// Request counters and token usage are recorded by the provider adapters.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps inner. Calls log through the request logger
// found in the context, falling back to log.
func NewInstrumentedEmbedder(inner domain.Embedder, provider, model string, log *zap.Logger) *InstrumentedEmbedder {
	if log == nil {
		log = zap.NewNop()
	}
	return &InstrumentedEmbedder{inner: inner, provider: provider, model: model, logger: log}
}

// Embed delegates to the inner embedder and logs the outcome.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	result, err := p.inner.Embed(ctx, text)

	log := logger.FromContextOr(ctx, p.logger).With(
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Int("text_runes", utf8.RuneCountInString(text)),
		zap.Duration("duration", time.Since(start)),
	)

	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			log.Debug("Embedding request canceled")
		case errors.Is(err, domain.ErrEmbeddingUnavailable):
			log.Warn("Embedding model unavailable", zap.Error(err))
		default:
			log.Error("Embedding request failed", zap.Error(err))
		}
		return domain.EmbeddingResult{}, fmt.Errorf("embed via %s: %w", p.provider, err)
	}

	log.Debug("Embedding request completed",
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s health: %w", p.provider, err)
		}
	}
	return nil
}
