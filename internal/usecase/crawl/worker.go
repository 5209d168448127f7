package crawl

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/logger"
)

// Worker drains the crawl queue into background ingestion.
type Worker struct {
	queue     Queue
	submitter Submitter
	interval  time.Duration
	batchSize int
	logger    *zap.Logger
}

// NewWorker creates a queue drain worker.
func NewWorker(q Queue, s Submitter, interval time.Duration, batchSize int, log *zap.Logger) *Worker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{queue: q, submitter: s, interval: interval, batchSize: batchSize, logger: log}
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("Crawl queue worker started",
		zap.Duration("interval", w.interval),
		zap.Int("batch_size", w.batchSize),
	)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Crawl queue worker stopped")
			return
		case <-ticker.C:
			w.Poll(ctx)
		}
	}
}

// Poll pops one batch and submits it. Popped URLs that cannot be submitted
// are pushed back so they are not lost while workers are busy.
func (w *Worker) Poll(ctx context.Context) {
	urls, err := w.queue.Pop(ctx, w.batchSize)
	if err != nil {
		w.logger.Warn("Crawl queue poll failed", zap.Error(err))
		return
	}
	if len(urls) == 0 {
		return
	}

	task, err := w.submitter.Submit(logger.ContextWithLogger(ctx, w.logger), urls)
	if err != nil {
		if errors.Is(err, domain.ErrIngestBusy) {
			if _, perr := w.queue.Enqueue(ctx, urls); perr != nil {
				w.logger.Error("Requeue after busy ingest failed", zap.Strings("urls", urls), zap.Error(perr))
			}
			return
		}
		w.logger.Error("Crawl batch submit failed", zap.Int("urls", len(urls)), zap.Error(err))
		return
	}
	w.logger.Debug("Crawl batch submitted", zap.String("task_id", task.ID), zap.Int("urls", len(urls)))
}
