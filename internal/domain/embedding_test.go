package domain

import (
	"context"
	"errors"
	"testing"
)

type recordingEmbedder struct {
	texts []string
	err   error
}

func (r *recordingEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	r.texts = append(r.texts, text)
	if r.err != nil {
		return EmbeddingResult{}, r.err
	}
	return EmbeddingResult{Embedding: []float32{1}}, nil
}

func TestInstructionEmbedder_Prepends(t *testing.T) {
	inner := &recordingEmbedder{}
	e := NewInstructionEmbedder(inner, "query: ")

	if _, err := e.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.texts[0] != "query: hello" {
		t.Errorf("got %q", inner.texts[0])
	}
}

func TestInstructionEmbedder_EmptyInstructionPassThrough(t *testing.T) {
	inner := &recordingEmbedder{}
	if e := NewInstructionEmbedder(inner, ""); e != Embedder(inner) {
		t.Error("expected inner embedder to be returned unchanged")
	}
}

func TestInstructionEmbedder_WrapsError(t *testing.T) {
	inner := &recordingEmbedder{err: ErrEmbeddingProviderError}
	_, err := NewInstructionEmbedder(inner, "q: ").Embed(context.Background(), "x")
	if !errors.Is(err, ErrEmbeddingProviderError) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}
