package sdk

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	openaiEmb "github.com/kailas-cloud/hybridsearch/internal/transport/openai"
)

// Embedder converts text to vector embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// OpenAIConfig configures the bundled OpenAI-compatible embedder.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	// Dimensions is sent upstream only with SendDimensions (Matryoshka models).
	Dimensions     int
	SendDimensions bool
	Timeout        time.Duration
}

// NewOpenAIEmbedder returns an Embedder for any OpenAI-compatible
// /embeddings endpoint (OpenAI, vLLM, text-embeddings-inference, Ollama).
func NewOpenAIEmbedder(cfg OpenAIConfig) Embedder {
	return &domainEmbedder{inner: openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		Dimensions:     cfg.Dimensions,
		SendDimensions: cfg.SendDimensions,
		Timeout:        cfg.Timeout,
	})}
}

// domainEmbedder exposes an internal embedder through the public interface.
type domainEmbedder struct {
	inner domain.Embedder
}

func (d *domainEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	r, err := d.inner.Embed(ctx, text)
	if err != nil {
		return EmbeddingResult{}, err
	}
	return EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// HealthCheck probes the wrapped embedder with a short text.
func (a *embedderAdapter) HealthCheck(ctx context.Context) error {
	if hc, ok := a.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	if _, err := a.inner.Embed(ctx, "health"); err != nil {
		return fmt.Errorf("embedding health check: %w", err)
	}
	return nil
}

// noopEmbedder fails every call (used when no embedder is configured).
// Lexical search keeps working without one.
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, fmt.Errorf("%w: use WithEmbedder", domain.ErrEmbeddingUnavailable)
}

func (noopEmbedder) HealthCheck(_ context.Context) error { return domain.ErrEmbeddingUnavailable }

func (d *domainEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := d.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
