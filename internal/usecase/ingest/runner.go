package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/logger"
)

// DefaultWorkers bounds concurrently running batches.
const DefaultWorkers = 4

// batchRunner is satisfied by *Pipeline.
type batchRunner interface {
	Run(ctx context.Context, urls []string) Report
}

// Task is a batch handed to the background runner.
type Task struct {
	ID   string
	URLs []string

	done   chan struct{}
	report Report
	err    error
}

func newTask(urls []string) *Task {
	return &Task{ID: uuid.NewString(), URLs: urls, done: make(chan struct{})}
}

// Done is closed when the batch finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the batch finished or ctx ends.
func (t *Task) Wait(ctx context.Context) (Report, error) {
	select {
	case <-t.done:
		return t.report, t.err
	case <-ctx.Done():
		return Report{}, fmt.Errorf("wait task %s: %w", t.ID, ctx.Err())
	}
}

// Report returns the batch report and whether the batch finished.
func (t *Task) Report() (Report, bool) {
	select {
	case <-t.done:
		return t.report, true
	default:
		return Report{}, false
	}
}

func (t *Task) finish(r Report, err error) {
	t.report, t.err = r, err
	close(t.done)
}

// Runner executes batches on a bounded goroutine pool so request handlers
// can return before ingestion completes.
type Runner struct {
	pool     *ants.Pool
	pipeline batchRunner
	logger   *zap.Logger
}

// NewRunner creates a runner with room for workers concurrent batches.
// Submissions beyond that are rejected, not queued.
func NewRunner(p batchRunner, workers int, log *zap.Logger) (*Runner, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if log == nil {
		log = zap.NewNop()
	}
	pool, err := ants.NewPool(workers,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(v any) {
			log.Error("Ingestion worker panicked", zap.Any("panic", v))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create ingest pool: %w", err)
	}
	return &Runner{pool: pool, pipeline: p, logger: log}, nil
}

// Submit schedules urls as one batch. The batch keeps ctx's values (request
// logger) but not its cancellation: it runs to completion after the caller
// returns.
func (r *Runner) Submit(ctx context.Context, urls []string) (*Task, error) {
	task := newTask(urls)
	bctx := logger.With(context.WithoutCancel(ctx), zap.String("task_id", task.ID))

	err := r.pool.Submit(func() {
		var rep Report
		defer func() {
			if v := recover(); v != nil {
				task.finish(rep, fmt.Errorf("ingest task %s panicked: %v", task.ID, v))
				panic(v)
			}
		}()
		rep = r.pipeline.Run(bctx, urls)
		task.finish(rep, nil)
	})
	if err != nil {
		if errors.Is(err, ants.ErrPoolOverload) || errors.Is(err, ants.ErrPoolClosed) {
			return nil, fmt.Errorf("%w: %w", domain.ErrIngestBusy, err)
		}
		return nil, fmt.Errorf("submit ingest task: %w", err)
	}

	r.logger.Info("Ingestion task scheduled", zap.String("task_id", task.ID), zap.Int("urls", len(urls)))
	return task, nil
}

// Running returns the number of batches in progress.
func (r *Runner) Running() int { return r.pool.Running() }

// Release stops accepting batches and waits up to timeout for running ones.
func (r *Runner) Release(timeout time.Duration) error {
	if err := r.pool.ReleaseTimeout(timeout); err != nil {
		return fmt.Errorf("release ingest pool: %w", err)
	}
	return nil
}
