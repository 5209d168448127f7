// Package openai embeds text through any OpenAI-compatible /embeddings API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/metrics"
)

// ProviderName labels metrics emitted by this embedder.
const ProviderName = "openai"

// Embedder is an embedding provider using the OpenAI-compatible API.
type Embedder struct {
	client         *openai.Client
	model          openai.EmbeddingModel
	dimensions     int
	sendDimensions bool
	user           string
	logger         *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Dimensions is only sent upstream when SendDimensions is set; servers
	// hosting fixed-size sentence-transformer models reject the field.
	Dimensions     int
	SendDimensions bool
	User           string
	Timeout        time.Duration
	Logger         *zap.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "none"
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		client:         openai.NewClientWithConfig(clientCfg),
		model:          openai.EmbeddingModel(cfg.Model),
		dimensions:     cfg.Dimensions,
		sendDimensions: cfg.SendDimensions,
		user:           cfg.User,
		logger:         logger,
	}
}

// Model returns the configured model name.
func (e *Embedder) Model() string { return string(e.model) }

// Embed requests one vector. Every failure wraps
// domain.ErrEmbeddingProviderError or domain.ErrMalformedResponse.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           e.user,
	}
	if e.sendDimensions && e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		kind, wrapped := classify(ctx, err)
		e.observe(start, kind)
		return domain.EmbeddingResult{}, wrapped
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		e.observe(start, "empty_response")
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrMalformedResponse)
	}
	e.observe(start, "")

	usage := resp.Usage
	if usage.TotalTokens > 0 {
		model := string(e.model)
		metrics.EmbeddingTokensTotal.WithLabelValues(ProviderName, model, "prompt").Add(float64(usage.PromptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(ProviderName, model, "total").Add(float64(usage.TotalTokens))
	}

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: usage.PromptTokens,
		TotalTokens:  usage.TotalTokens,
	}, nil
}

// observe records one request. An empty errType means success.
func (e *Embedder) observe(start time.Time, errType string) {
	model := string(e.model)
	if errType != "" {
		metrics.EmbeddingRequestsTotal.WithLabelValues(ProviderName, model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(ProviderName, model, errType).Inc()
		return
	}
	metrics.EmbeddingRequestsTotal.WithLabelValues(ProviderName, model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(ProviderName, model).Observe(time.Since(start).Seconds())
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// classify labels a failed request and wraps it with
// domain.ErrEmbeddingProviderError. A cancelled caller context stays
// visible to errors.Is.
func classify(ctx context.Context, err error) (string, error) {
	wrap := domain.ErrEmbeddingProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return "api_error", fmt.Errorf("embedding API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return "api_error", fmt.Errorf("embedding API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "canceled", fmt.Errorf("embedding request aborted: %w: %w", ctxErr, wrap)
	}
	return "transport", fmt.Errorf("embedding request failed: %v: %w", err, wrap)
}

// extractDetail reads the "detail" field used by FastAPI-style error bodies.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
