// Package search answers queries with lexical, vector or fused retrieval.
package search

import (
	"context"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/request"
	"github.com/kailas-cloud/hybridsearch/internal/domain/search/result"
	"github.com/kailas-cloud/hybridsearch/internal/logger"
	"github.com/kailas-cloud/hybridsearch/internal/metrics"
)

// DefaultSnippetRunes is the display length of lexical-mode content.
const DefaultSnippetRunes = 200

// Response is the outcome of one query.
type Response struct {
	Query      string
	Mode       mode.Mode
	TotalFound int
	Results    []result.Fused
	// QueryTime is elapsed seconds, rounded to milliseconds.
	QueryTime float64
}

// Options tunes the service.
type Options struct {
	Weights      Weights
	SnippetRunes int
	// Dimensions, when positive, is enforced on query vectors.
	Dimensions int
}

// Service handles document search across lexical, vector and fused modes.
type Service struct {
	lexical LexicalRetriever
	vector  VectorRetriever
	embed   Embedder
	opts    Options
	now     func() time.Time
}

// New creates a search service. Zero options take the defaults.
func New(lexical LexicalRetriever, vector VectorRetriever, embed Embedder, opts Options) *Service {
	if opts.Weights == (Weights{}) {
		opts.Weights = DefaultWeights()
	}
	if opts.SnippetRunes <= 0 {
		opts.SnippetRunes = DefaultSnippetRunes
	}
	return &Service{lexical: lexical, vector: vector, embed: embed, opts: opts, now: time.Now}
}

// Search executes one query. Any retriever or embedder failure fails the
// whole query; partial results are never returned.
func (s *Service) Search(ctx context.Context, req *request.Request) (Response, error) {
	start := s.now()

	var (
		results []result.Fused
		err     error
	)
	switch req.Mode() {
	case mode.Lexical:
		results, err = s.searchLexical(ctx, req)
	case mode.Vector:
		results, err = s.searchVector(ctx, req)
	case mode.Fused:
		results, err = s.searchFused(ctx, req)
	default:
		err = fmt.Errorf("%w: %q", domain.ErrInvalidMode, req.Mode())
	}

	elapsed := s.now().Sub(start)
	metrics.SearchRequestsTotal.WithLabelValues(string(req.Mode()), metrics.Status(err)).Inc()
	metrics.SearchDuration.WithLabelValues(string(req.Mode())).Observe(elapsed.Seconds())

	if err != nil {
		return Response{}, fmt.Errorf("search: %w", err)
	}

	logger.FromContext(ctx).Debug("Search completed",
		zap.String("mode", string(req.Mode())),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", elapsed),
	)

	return Response{
		Query:      req.Query(),
		Mode:       req.Mode(),
		TotalFound: len(results),
		Results:    results,
		QueryTime:  math.Round(elapsed.Seconds()*1000) / 1000,
	}, nil
}

// searchLexical returns BM25 hits with native scores and snippet content.
func (s *Service) searchLexical(ctx context.Context, req *request.Request) ([]result.Fused, error) {
	docs, err := s.lexical.Lexical(ctx, req.Query(), req.Rows())
	if err != nil {
		return nil, fmt.Errorf("lexical: %w", err)
	}

	out := make([]result.Fused, 0, len(docs))
	for _, d := range docs {
		d = d.WithContent(snippet(d.Content(), s.opts.SnippetRunes))
		out = append(out, result.Fused{ScoredDocument: d})
	}
	return out, nil
}

// searchVector returns KNN hits with native scores and full content.
func (s *Service) searchVector(ctx context.Context, req *request.Request) ([]result.Fused, error) {
	vec, err := s.embedQuery(ctx, req.Query())
	if err != nil {
		return nil, err
	}

	docs, err := s.vector.Vector(ctx, vec, req.Rows())
	if err != nil {
		return nil, fmt.Errorf("vector: %w", err)
	}

	out := make([]result.Fused, 0, len(docs))
	for _, d := range docs {
		out = append(out, result.Fused{ScoredDocument: d})
	}
	return out, nil
}

// searchFused runs both retrievers concurrently for rerankDocs candidates each.
func (s *Service) searchFused(ctx context.Context, req *request.Request) ([]result.Fused, error) {
	var lexical, vector []result.ScoredDocument

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := s.lexical.Lexical(gctx, req.Query(), req.RerankDocs())
		if err != nil {
			return fmt.Errorf("lexical: %w", err)
		}
		lexical = docs
		return nil
	})
	g.Go(func() error {
		vec, err := s.embedQuery(gctx, req.Query())
		if err != nil {
			return err
		}
		docs, err := s.vector.Vector(gctx, vec, req.RerankDocs())
		if err != nil {
			return fmt.Errorf("vector: %w", err)
		}
		vector = docs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // stage already named by the failing goroutine
	}

	return Fuse(lexical, vector, req.Rows(), s.opts.Weights), nil
}

func (s *Service) embedQuery(ctx context.Context, query string) ([]float32, error) {
	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if s.opts.Dimensions > 0 && len(emb.Embedding) != s.opts.Dimensions {
		return nil, fmt.Errorf("embed query: got %d dimensions, want %d: %w",
			len(emb.Embedding), s.opts.Dimensions, domain.ErrVectorDimMismatch)
	}
	return emb.Embedding, nil
}

// snippet cuts content to n runes and marks the cut with "...".
func snippet(content string, n int) string {
	if utf8.RuneCountInString(content) <= n {
		return content
	}
	runes := []rune(content)
	return string(runes[:n]) + "..."
}
