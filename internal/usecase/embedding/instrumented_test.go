package embedding

import (
	"context"
	"errors"
	"os"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/logger"
	"github.com/kailas-cloud/hybridsearch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

type mockEmbedder struct {
	result    domain.EmbeddingResult
	err       error
	healthErr error
	calls     int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error { return m.healthErr }

func TestInstrumentedEmbedder_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 7,
		TotalTokens:  7,
	}}
	core, logs := observer.New(zap.DebugLevel)
	p := NewInstrumentedEmbedder(inner, "test", "test-model", zap.New(core))

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.TotalTokens != 7 {
		t.Errorf("unexpected result: %+v", result)
	}
	if logs.FilterMessage("Embedding request completed").Len() != 1 {
		t.Error("expected completion debug log")
	}
}

func TestInstrumentedEmbedder_Error(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	core, logs := observer.New(zap.DebugLevel)
	p := NewInstrumentedEmbedder(inner, "test", "test-model", zap.New(core))

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
	if logs.FilterMessage("Embedding request failed").Len() != 1 {
		t.Error("expected failure error log")
	}
}

func TestInstrumentedEmbedder_CanceledIsQuiet(t *testing.T) {
	inner := &mockEmbedder{err: context.Canceled}
	core, logs := observer.New(zap.DebugLevel)
	p := NewInstrumentedEmbedder(inner, "test", "m", zap.New(core))

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if logs.FilterLevelExact(zap.ErrorLevel).Len() != 0 {
		t.Error("cancellation must not log at error level")
	}
	if logs.FilterMessage("Embedding request canceled").Len() != 1 {
		t.Error("expected cancellation debug log")
	}
}

func TestInstrumentedEmbedder_UsesRequestLogger(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	fallbackCore, fallbackLogs := observer.New(zap.DebugLevel)
	reqCore, reqLogs := observer.New(zap.DebugLevel)
	p := NewInstrumentedEmbedder(inner, "test", "m", zap.New(fallbackCore))

	ctx := logger.ContextWithLogger(context.Background(), zap.New(reqCore).With(zap.String("request_id", "r1")))
	if _, err := p.Embed(ctx, "héllo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fallbackLogs.Len() != 0 {
		t.Error("expected no logs on the fallback logger")
	}
	entries := reqLogs.FilterField(zap.String("request_id", "r1")).All()
	if len(entries) != 1 {
		t.Fatalf("expected one request-scoped entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["text_runes"]; got != int64(5) {
		t.Errorf("text_runes = %v, want 5", got)
	}
}

func TestInstrumentedEmbedder_HealthCheck(t *testing.T) {
	inner := &mockEmbedder{healthErr: errors.New("down")}
	p := NewInstrumentedEmbedder(inner, "test", "m", zap.NewNop())

	if err := p.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected inner health error")
	}
}
