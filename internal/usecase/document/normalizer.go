// Package document turns raw sources into indexable documents and writes
// direct submissions.
package document

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
)

// Extraction bounds, in runes.
const (
	DefaultMinContentRunes = 50
	DefaultMaxContentRunes = 5000
)

// NormalizerConfig sets the vector size and extraction bounds.
type NormalizerConfig struct {
	Dimensions      int
	MinContentRunes int
	MaxContentRunes int
}

// Normalizer builds IndexableDocuments. It embeds text and has no other
// side effect.
type Normalizer struct {
	embed Embedder
	cfg   NormalizerConfig
	clock func() time.Time
}

// NewNormalizer creates a normalizer. embed may be nil, in which case every
// call fails with domain.ErrEmbeddingUnavailable.
func NewNormalizer(embed Embedder, cfg NormalizerConfig) *Normalizer {
	if cfg.MinContentRunes <= 0 {
		cfg.MinContentRunes = DefaultMinContentRunes
	}
	if cfg.MaxContentRunes <= 0 {
		cfg.MaxContentRunes = DefaultMaxContentRunes
	}
	return &Normalizer{embed: embed, cfg: cfg, clock: time.Now}
}

// WithClock overrides the ingestion timestamp source.
func (n *Normalizer) WithClock(clock func() time.Time) *Normalizer {
	n.clock = clock
	return n
}

// Dimensions returns the enforced vector size.
func (n *Normalizer) Dimensions() int { return n.cfg.Dimensions }

// FromSubmission normalizes a caller-provided document. Title and content
// are trusted and stored as given.
func (n *Normalizer) FromSubmission(ctx context.Context, rawURL, title, content string) (domain.IndexableDocument, error) {
	return n.build(ctx, rawURL, title, content)
}

// FromExtraction normalizes text scraped from a page: whitespace runs are
// collapsed, the text is cut to MaxContentRunes, and anything shorter than
// MinContentRunes fails with domain.ErrExtractionTooShort before embedding.
func (n *Normalizer) FromExtraction(ctx context.Context, rawURL, title, rawText string) (domain.IndexableDocument, error) {
	text := truncateRunes(strings.Join(strings.Fields(rawText), " "), n.cfg.MaxContentRunes)
	if got := utf8.RuneCountInString(text); got < n.cfg.MinContentRunes {
		return domain.IndexableDocument{}, fmt.Errorf("%w: %d runes, need %d",
			domain.ErrExtractionTooShort, got, n.cfg.MinContentRunes)
	}
	return n.build(ctx, rawURL, strings.TrimSpace(title), text)
}

func (n *Normalizer) build(ctx context.Context, rawURL, title, content string) (domain.IndexableDocument, error) {
	id, err := domain.DocumentID(rawURL)
	if err != nil {
		return domain.IndexableDocument{}, err
	}
	if n.embed == nil {
		return domain.IndexableDocument{}, domain.ErrEmbeddingUnavailable
	}

	emb, err := n.embed.Embed(ctx, content)
	if err != nil {
		return domain.IndexableDocument{}, fmt.Errorf("embed content: %w", err)
	}

	doc := domain.IndexableDocument{
		ID:            id,
		URL:           rawURL,
		Title:         title,
		Content:       content,
		Vector:        emb.Embedding,
		Domain:        hostOf(rawURL),
		CrawledAt:     n.clock().UTC(),
		PageRank:      domain.DefaultPageRank,
		ContentLength: utf8.RuneCountInString(content),
	}
	if err := doc.Validate(n.cfg.Dimensions); err != nil {
		return domain.IndexableDocument{}, err //nolint:wrapcheck // domain sentinel
	}
	return doc, nil
}

// hostOf returns the network location of rawURL, empty when unparseable.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
