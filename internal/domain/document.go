package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultPageRank is the neutral prior assigned to every newly indexed document.
const DefaultPageRank = 0.5

// IndexableDocument is a normalized record ready for the search index.
type IndexableDocument struct {
	ID            string
	URL           string
	Title         string
	Content       string
	Vector        []float32
	Domain        string
	CrawledAt     time.Time
	PageRank      float64
	ContentLength int
}

// Validate checks the invariants every stored document must satisfy.
func (d *IndexableDocument) Validate(dim int) error {
	if d.ID == "" {
		return fmt.Errorf("%w: document id is required", ErrInvalidRequest)
	}
	if len(d.Vector) != dim {
		return fmt.Errorf("%w: got %d, want %d", ErrVectorDimMismatch, len(d.Vector), dim)
	}
	return nil
}

// DocumentID derives the stable identifier for a source location: every
// character outside [A-Za-z0-9] becomes an underscore. Distinct URLs may collide
// (e.g. "a/b" and "a?b"); the later write wins.
func DocumentID(rawURL string) (string, error) {
	if rawURL == "" {
		return "", fmt.Errorf("%w: url is required", ErrInvalidRequest)
	}
	var b strings.Builder
	b.Grow(len(rawURL))
	for _, c := range rawURL {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String(), nil
}

// ExtractedPage is the readable content of a fetched source.
type ExtractedPage struct {
	URL   string
	Title string
	Text  string
}
