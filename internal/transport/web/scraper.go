package web

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
)

// Scraper fetches a page and extracts its readable text.
type Scraper struct {
	fetcher *Fetcher
}

// NewScraper creates a scraper over f.
func NewScraper(f *Fetcher) *Scraper {
	return &Scraper{fetcher: f}
}

// Scrape returns the title and text of rawURL. Fetch failures wrap
// domain.ErrFetchFailed.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (domain.ExtractedPage, error) {
	page, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return domain.ExtractedPage{}, err
	}

	ex, err := Extract(page.Body)
	if err != nil {
		return domain.ExtractedPage{}, fmt.Errorf("extract %s: %w", rawURL, err)
	}
	return domain.ExtractedPage{URL: rawURL, Title: ex.Title, Text: ex.Text}, nil
}
