package document

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
)

// --- Mocks ---

type mockEmbedder struct {
	vec      []float32
	err      error
	calls    int
	lastText string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	m.lastText = text
	return domain.EmbeddingResult{Embedding: m.vec}, m.err
}

var fixedNow = time.Date(2026, 10, 14, 9, 30, 0, 0, time.FixedZone("MSK", 3*3600))

func newTestNormalizer(emb Embedder) *Normalizer {
	return NewNormalizer(emb, NormalizerConfig{Dimensions: 3}).WithClock(func() time.Time { return fixedNow })
}

// --- Tests ---

func TestFromSubmission(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{1, 2, 3}}
	n := newTestNormalizer(emb)

	doc, err := n.FromSubmission(context.Background(), "https://example.com:8080/hello?x=1", "Hello World", "Tiny  doc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID != "https___example_com_8080_hello_x_1" {
		t.Errorf("id = %q", doc.ID)
	}
	if doc.Domain != "example.com:8080" {
		t.Errorf("domain = %q", doc.Domain)
	}
	if doc.Content != "Tiny  doc" || doc.ContentLength != 9 {
		t.Errorf("submission content must be stored as given, got %q/%d", doc.Content, doc.ContentLength)
	}
	if doc.PageRank != domain.DefaultPageRank {
		t.Errorf("page rank = %v", doc.PageRank)
	}
	if !doc.CrawledAt.Equal(fixedNow) || doc.CrawledAt.Location() != time.UTC {
		t.Errorf("crawled at = %v, want %v in UTC", doc.CrawledAt, fixedNow)
	}
	if emb.lastText != "Tiny  doc" {
		t.Errorf("embedded %q, want content", emb.lastText)
	}
}

func TestFromExtraction_CollapsesAndTruncates(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{1, 2, 3}}
	n := NewNormalizer(emb, NormalizerConfig{Dimensions: 3, MinContentRunes: 5, MaxContentRunes: 12})

	doc, err := n.FromExtraction(context.Background(), "https://a.b/c", "  Title \n", "one\n\n  two\tthree   four")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Content != "one two thre" {
		t.Errorf("content = %q", doc.Content)
	}
	if doc.Title != "Title" {
		t.Errorf("title = %q", doc.Title)
	}
	if doc.ContentLength != 12 {
		t.Errorf("content length = %d", doc.ContentLength)
	}
}

func TestFromExtraction_TooShortSkipsEmbedding(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{1, 2, 3}}
	n := newTestNormalizer(emb)

	_, err := n.FromExtraction(context.Background(), "https://a.b", "T", "  "+strings.Repeat("w ", 20))
	if !errors.Is(err, domain.ErrExtractionTooShort) {
		t.Fatalf("expected ErrExtractionTooShort, got %v", err)
	}
	if emb.calls != 0 {
		t.Errorf("embedder called %d times for short text", emb.calls)
	}
}

func TestFromExtraction_RuneCounting(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{1, 2, 3}}
	n := newTestNormalizer(emb)

	// 50 Cyrillic runes, 100 bytes.
	text := strings.Repeat("ж", 50)
	if _, err := n.FromExtraction(context.Background(), "https://a.b", "T", text); err != nil {
		t.Fatalf("50 runes must pass the threshold: %v", err)
	}
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		emb     Embedder
		url     string
		wantErr error
	}{
		{"nil embedder", nil, "https://a.b", domain.ErrEmbeddingUnavailable},
		{"not ready", &mockEmbedder{err: domain.ErrEmbeddingUnavailable}, "https://a.b", domain.ErrEmbeddingUnavailable},
		{"wrong dimension", &mockEmbedder{vec: []float32{1}}, "https://a.b", domain.ErrVectorDimMismatch},
		{"empty url", &mockEmbedder{vec: []float32{1, 2, 3}}, "", domain.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestNormalizer(tt.emb).FromSubmission(context.Background(), tt.url, "T", "body")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNormalize_SameURLSameID(t *testing.T) {
	n := newTestNormalizer(&mockEmbedder{vec: []float32{1, 2, 3}})

	a, _ := n.FromSubmission(context.Background(), "https://x.y/z", "v1", "first")
	b, _ := n.FromSubmission(context.Background(), "https://x.y/z", "v2", "second")
	if a.ID != b.ID {
		t.Errorf("ids differ: %q vs %q", a.ID, b.ID)
	}
}
