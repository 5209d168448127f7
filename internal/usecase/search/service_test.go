package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/request"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/result"
)

// --- Mocks ---

type mockRetriever struct {
	mu        sync.Mutex
	lexDocs   []result.ScoredDocument
	vecDocs   []result.ScoredDocument
	lexErr    error
	vecErr    error
	lexLimits []int
	vecLimits []int
}

func (m *mockRetriever) Lexical(_ context.Context, _ string, limit int) ([]result.ScoredDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lexLimits = append(m.lexLimits, limit)
	return m.lexDocs, m.lexErr
}

func (m *mockRetriever) Vector(_ context.Context, _ []float32, limit int) ([]result.ScoredDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vecLimits = append(m.vecLimits, limit)
	return m.vecDocs, m.vecErr
}

type mockEmbedder struct {
	mu    sync.Mutex
	vec   []float32
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return domain.EmbeddingResult{Embedding: m.vec}, m.err
}

func newReq(t *testing.T, m mode.Mode, rows, rerank int) *request.Request {
	t.Helper()
	req, err := request.New("hybrid search", m, rows, rerank, request.DefaultLimits())
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return &req
}

// --- Tests ---

func TestSearch_LexicalMode(t *testing.T) {
	long := strings.Repeat("x", 300)
	r := &mockRetriever{lexDocs: []result.ScoredDocument{
		result.New("a", "A", "https://a", long, 12.5),
		result.New("b", "B", "https://b", "short", 3),
	}}
	emb := &mockEmbedder{vec: []float32{1}}
	svc := New(r, r, emb, Options{})

	resp, err := svc.Search(context.Background(), newReq(t, mode.Lexical, 5, 50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emb.calls != 0 || len(r.vecLimits) != 0 {
		t.Fatal("lexical mode must not embed or call the vector retriever")
	}
	if len(r.lexLimits) != 1 || r.lexLimits[0] != 5 {
		t.Errorf("lexical limit = %v, want [5] (rows, not rerank_docs)", r.lexLimits)
	}
	if resp.TotalFound != 2 || resp.Results[0].Score() != 12.5 {
		t.Errorf("expected native scores, got %+v", resp)
	}
	if got := resp.Results[0].Content(); len(got) != 203 || !strings.HasSuffix(got, "...") {
		t.Errorf("expected 200-rune snippet, got %d chars", len(got))
	}
	if resp.Results[1].Content() != "short" {
		t.Errorf("short content must be kept, got %q", resp.Results[1].Content())
	}
}

func TestSearch_VectorMode(t *testing.T) {
	long := strings.Repeat("y", 300)
	r := &mockRetriever{vecDocs: []result.ScoredDocument{result.New("a", "A", "https://a", long, 0.87)}}
	svc := New(r, r, &mockEmbedder{vec: []float32{1, 2}}, Options{Dimensions: 2})

	resp, err := svc.Search(context.Background(), newReq(t, mode.Vector, 3, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.lexLimits) != 0 {
		t.Fatal("vector mode must not call the lexical retriever")
	}
	if r.vecLimits[0] != 3 {
		t.Errorf("vector limit = %d, want 3", r.vecLimits[0])
	}
	if resp.Results[0].Score() != 0.87 || resp.Results[0].Content() != long {
		t.Errorf("expected native score and full content")
	}
	if resp.Mode != mode.Vector || resp.Query != "hybrid search" {
		t.Errorf("unexpected echo: %s %q", resp.Mode, resp.Query)
	}
}

func TestSearch_FusedMode(t *testing.T) {
	r := &mockRetriever{
		lexDocs: []result.ScoredDocument{doc("A", 10), doc("B", 5)},
		vecDocs: []result.ScoredDocument{doc("A", 0.8), doc("C", 0.9)},
	}
	svc := New(r, r, &mockEmbedder{vec: []float32{1}}, Options{})

	resp, err := svc.Search(context.Background(), newReq(t, mode.Fused, 2, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.lexLimits[0] != 30 || r.vecLimits[0] != 30 {
		t.Errorf("limits = %v/%v, want rerank_docs 30", r.lexLimits, r.vecLimits)
	}
	if resp.TotalFound != 2 || resp.Results[0].ID() != "A" || resp.Results[1].ID() != "B" {
		t.Errorf("unexpected fused results: %+v", resp.Results)
	}
	if resp.Results[0].Content() != "content A" {
		t.Errorf("fused content must not be truncated")
	}
}

func TestSearch_FailuresAbort(t *testing.T) {
	tests := []struct {
		name    string
		m       mode.Mode
		r       *mockRetriever
		emb     *mockEmbedder
		wantErr error
	}{
		{
			name:    "lexical down in fused",
			m:       mode.Fused,
			r:       &mockRetriever{lexErr: domain.ErrIndexUnavailable, vecDocs: []result.ScoredDocument{doc("A", 1)}},
			emb:     &mockEmbedder{vec: []float32{1}},
			wantErr: domain.ErrIndexUnavailable,
		},
		{
			name:    "vector malformed in fused",
			m:       mode.Fused,
			r:       &mockRetriever{vecErr: domain.ErrMalformedResponse, lexDocs: []result.ScoredDocument{doc("A", 1)}},
			emb:     &mockEmbedder{vec: []float32{1}},
			wantErr: domain.ErrMalformedResponse,
		},
		{
			name:    "embedder unavailable in vector",
			m:       mode.Vector,
			r:       &mockRetriever{},
			emb:     &mockEmbedder{err: domain.ErrEmbeddingUnavailable},
			wantErr: domain.ErrEmbeddingUnavailable,
		},
		{
			name:    "dimension mismatch",
			m:       mode.Vector,
			r:       &mockRetriever{},
			emb:     &mockEmbedder{vec: []float32{1, 2, 3}},
			wantErr: domain.ErrVectorDimMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(tt.r, tt.r, tt.emb, Options{Dimensions: 1})
			resp, err := svc.Search(context.Background(), newReq(t, tt.m, 10, 20))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if !strings.HasPrefix(err.Error(), "search: ") {
				t.Errorf("error not wrapped: %v", err)
			}
			if resp.Results != nil {
				t.Error("partial results returned")
			}
		})
	}
}

func TestSearch_QueryTimeRounded(t *testing.T) {
	r := &mockRetriever{}
	svc := New(r, r, &mockEmbedder{vec: []float32{1}}, Options{})

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ticks := []time.Time{base, base.Add(1234567 * time.Microsecond)}
	svc.now = func() time.Time {
		t := ticks[0]
		ticks = ticks[1:]
		return t
	}

	resp, err := svc.Search(context.Background(), newReq(t, mode.Lexical, 10, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.QueryTime != 1.235 {
		t.Errorf("query_time = %v, want 1.235", resp.QueryTime)
	}
}

func TestSearch_CustomWeights(t *testing.T) {
	r := &mockRetriever{
		lexDocs: []result.ScoredDocument{doc("L", 1)},
		vecDocs: []result.ScoredDocument{doc("V", 1)},
	}
	w := Weights{LexicalOnly: 0.5, BothLexical: 0.5, BothVector: 0.5, VectorOnly: 1}
	svc := New(r, r, &mockEmbedder{vec: []float32{1}}, Options{Weights: w})

	resp, err := svc.Search(context.Background(), newReq(t, mode.Fused, 10, 20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Results[0].ID() != "V" {
		t.Errorf("expected vector-only doc first with custom weights, got %s", resp.Results[0].ID())
	}
}
