package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
)

func TestGate_ClosedUntilWarmup(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 2, 3}}}
	g := NewGate(inner, 3, nil)

	if _, err := g.Embed(context.Background(), "x"); !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable before warmup, got %v", err)
	}
	if err := g.HealthCheck(context.Background()); !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected unhealthy before warmup, got %v", err)
	}
	if inner.calls != 0 {
		t.Fatalf("closed gate must not call provider, calls=%d", inner.calls)
	}

	if err := g.Warmup(context.Background()); err != nil {
		t.Fatalf("warmup: %v", err)
	}
	if !g.Ready() {
		t.Fatal("expected gate open")
	}

	res, err := g.Embed(context.Background(), "x")
	if err != nil || len(res.Embedding) != 3 {
		t.Fatalf("embed after warmup = %v, %v", res, err)
	}
	if err := g.HealthCheck(context.Background()); err != nil {
		t.Fatalf("health after warmup: %v", err)
	}
}

func TestGate_DimensionMismatchKeepsClosed(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 2}}}
	g := NewGate(inner, 384, nil)

	err := g.WarmupUntilReady(context.Background(), time.Millisecond)
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
	if g.Ready() {
		t.Fatal("gate must stay closed")
	}
	if inner.calls != 1 {
		t.Errorf("mismatch must not be retried, calls=%d", inner.calls)
	}
}

func TestGate_NilEmbedder(t *testing.T) {
	g := NewGate(nil, 384, nil)

	if err := g.Warmup(context.Background()); !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
	if _, err := g.Embed(context.Background(), "x"); !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

// flakyEmbedder fails the first n calls.
type flakyEmbedder struct {
	failures int
	calls    int
}

func (f *flakyEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	f.calls++
	if f.calls <= f.failures {
		return domain.EmbeddingResult{}, domain.ErrEmbeddingProviderError
	}
	return domain.EmbeddingResult{Embedding: []float32{1}}, nil
}

func TestGate_WarmupRetries(t *testing.T) {
	inner := &flakyEmbedder{failures: 2}
	g := NewGate(inner, 1, nil)

	if err := g.WarmupUntilReady(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 3 || !g.Ready() {
		t.Errorf("calls=%d ready=%v", inner.calls, g.Ready())
	}
}

func TestGate_WarmupCancelled(t *testing.T) {
	g := NewGate(&flakyEmbedder{failures: 1 << 30}, 1, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := g.WarmupUntilReady(ctx, 5*time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
