// Package langchain embeds text through langchaingo, for self-hosted
// OpenAI-compatible model servers (text-embeddings-inference, Ollama, LocalAI).
package langchain

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/metrics"
)

// ProviderName labels metrics emitted by this embedder.
const ProviderName = "langchain"

const healthProbe = "health"

// Config holds connection settings for the model server.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Logger  *zap.Logger
}

// Embedder implements domain.Embedder on top of a langchaingo embedder.
type Embedder struct {
	embedder embeddings.Embedder
	model    string
	logger   *zap.Logger
}

// NewEmbedder creates an embedder. Local servers usually ignore the token,
// so an empty APIKey is sent as "none".
func NewEmbedder(cfg *Config) (*Embedder, error) {
	token := cfg.APIKey
	if token == "" {
		token = "none"
	}

	client, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(token),
		openai.WithEmbeddingModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("langchain client: %w", err)
	}

	emb, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("langchain embedder: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{embedder: emb, model: cfg.Model, logger: logger}, nil
}

// newWithEmbedder wraps an existing langchaingo embedder.
func newWithEmbedder(emb embeddings.Embedder, model string) *Embedder {
	return &Embedder{embedder: emb, model: model, logger: zap.NewNop()}
}

// Embed vectorizes one text. Token usage is not reported by langchaingo.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()

	vecs, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(ProviderName, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(ProviderName, e.model, "api_error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("embed documents: %v: %w", err, domain.ErrEmbeddingProviderError)
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(ProviderName, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(ProviderName, e.model, "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrMalformedResponse)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(ProviderName, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(ProviderName, e.model).Observe(time.Since(start).Seconds())

	e.logger.Debug("Embedded text", zap.Int("runes", len([]rune(text))), zap.Int("dimensions", len(vecs[0])))
	return domain.EmbeddingResult{Embedding: vecs[0]}, nil
}

// HealthCheck embeds a short probe; langchaingo exposes no model listing.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.embedder.EmbedQuery(ctx, healthProbe); err != nil {
		return fmt.Errorf("probe embedding: %w", err)
	}
	return nil
}
