// Package ingest fetches, normalizes and indexes batches of sources.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/logger"
	"github.com/kailas-cloud/hybridsearch/internal/metrics"
)

// DefaultPoliteness is the pause between the end of one source and the
// fetch of the next.
const DefaultPoliteness = 2 * time.Second

// Status is the per-source result of a batch.
type Status string

// Source statuses.
const (
	StatusIndexed Status = "indexed"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome records what happened to one source.
type Outcome struct {
	URL    string
	ID     string
	Status Status
	Err    error
}

// Report summarizes a batch. Commit failures do not change outcomes.
type Report struct {
	Total     int
	Indexed   int
	Skipped   int
	Failed    int
	Committed bool
	CommitErr error
	Outcomes  []Outcome
	Duration  time.Duration
}

// Pipeline processes sources one at a time: fetch, extract, normalize,
// upsert. After each source it pauses for the politeness interval, however
// long the source took. A failing source never aborts the batch. The batch
// ends with a single commit.
type Pipeline struct {
	scraper    Scraper
	normalizer Normalizer
	writer     Writer
	politeness time.Duration
}

// NewPipeline creates a pipeline. A negative politeness disables the pause;
// zero takes DefaultPoliteness.
func NewPipeline(s Scraper, n Normalizer, w Writer, politeness time.Duration) *Pipeline {
	if politeness == 0 {
		politeness = DefaultPoliteness
	}
	return &Pipeline{scraper: s, normalizer: n, writer: w, politeness: politeness}
}

// Run ingests urls in order and returns the batch report.
func (p *Pipeline) Run(ctx context.Context, urls []string) Report {
	log := logger.FromContext(ctx)
	start := time.Now()

	limit := rate.Inf
	if p.politeness > 0 {
		limit = rate.Every(p.politeness)
	}
	limiter := rate.NewLimiter(limit, 1)

	report := Report{Total: len(urls), Outcomes: make([]Outcome, 0, len(urls))}
	for _, u := range urls {
		var out Outcome
		if err := limiter.Wait(ctx); err != nil {
			out = Outcome{URL: u, Status: StatusFailed, Err: fmt.Errorf("politeness wait: %w", err)}
		} else {
			out = p.ingestOne(ctx, u)
			limiter = pausedLimiter(limit)
		}

		p.logOutcome(log, out)
		metrics.IngestSourcesTotal.WithLabelValues(string(out.Status)).Inc()

		switch out.Status {
		case StatusIndexed:
			report.Indexed++
		case StatusSkipped:
			report.Skipped++
		default:
			report.Failed++
		}
		report.Outcomes = append(report.Outcomes, out)
	}

	if err := p.writer.Commit(ctx); err != nil {
		report.CommitErr = err
		metrics.IngestCommitsTotal.WithLabelValues("error").Inc()
		log.Warn("Batch commit failed, writes may not be visible yet",
			zap.Int("indexed", report.Indexed),
			zap.Error(err),
		)
	} else {
		report.Committed = true
		metrics.IngestCommitsTotal.WithLabelValues("success").Inc()
	}

	report.Duration = time.Since(start)
	metrics.IngestBatchesTotal.Inc()

	log.Info("Ingestion batch finished",
		zap.Int("total", report.Total),
		zap.Int("indexed", report.Indexed),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Bool("committed", report.Committed),
		zap.Duration("duration", report.Duration),
	)
	return report
}

// pausedLimiter returns a limiter whose next token is one full interval
// away from now.
func pausedLimiter(limit rate.Limit) *rate.Limiter {
	l := rate.NewLimiter(limit, 1)
	l.Allow()
	return l
}

func (p *Pipeline) ingestOne(ctx context.Context, u string) Outcome {
	page, err := p.scraper.Scrape(ctx, u)
	if err != nil {
		return Outcome{URL: u, Status: StatusFailed, Err: fmt.Errorf("scrape: %w", err)}
	}

	doc, err := p.normalizer.FromExtraction(ctx, u, page.Title, page.Text)
	switch {
	case errors.Is(err, domain.ErrExtractionTooShort), errors.Is(err, domain.ErrEmbeddingUnavailable):
		return Outcome{URL: u, Status: StatusSkipped, Err: err}
	case err != nil:
		return Outcome{URL: u, Status: StatusFailed, Err: fmt.Errorf("normalize: %w", err)}
	}

	if err := p.writer.Upsert(ctx, &doc); err != nil {
		return Outcome{URL: u, ID: doc.ID, Status: StatusFailed, Err: fmt.Errorf("upsert: %w", err)}
	}
	return Outcome{URL: u, ID: doc.ID, Status: StatusIndexed}
}

func (p *Pipeline) logOutcome(log *zap.Logger, out Outcome) {
	fields := []zap.Field{zap.String("url", out.URL), zap.String("outcome", string(out.Status))}
	if out.ID != "" {
		fields = append(fields, zap.String("id", out.ID))
	}

	switch {
	case out.Status == StatusIndexed:
		log.Info("Source indexed", fields...)
	case errors.Is(out.Err, domain.ErrExtractionTooShort):
		log.Warn("Insufficient content, source skipped", append(fields, zap.Error(out.Err))...)
	case errors.Is(out.Err, domain.ErrEmbeddingUnavailable):
		log.Error("Embedding model not available, source skipped", append(fields, zap.Error(out.Err))...)
	default:
		log.Error("Source failed", append(fields, zap.Error(out.Err))...)
	}
}
