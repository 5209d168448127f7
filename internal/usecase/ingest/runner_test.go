package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
)

// blockingRunner holds each batch until released.
type blockingRunner struct {
	release chan struct{}
	started chan struct{}
	ctxErr  chan error
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{
		release: make(chan struct{}),
		started: make(chan struct{}, 8),
		ctxErr:  make(chan error, 8),
	}
}

func (b *blockingRunner) Run(ctx context.Context, urls []string) Report {
	b.started <- struct{}{}
	<-b.release
	b.ctxErr <- ctx.Err()
	return Report{Total: len(urls), Indexed: len(urls), Committed: true}
}

func TestRunner_SubmitAndWait(t *testing.T) {
	br := newBlockingRunner()
	r, err := NewRunner(br, 2, nil)
	require.NoError(t, err)
	defer func() { _ = r.Release(time.Second) }()

	ctx, cancel := context.WithCancel(context.Background())
	task, err := r.Submit(ctx, []string{"https://a", "https://b"})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)

	<-br.started
	cancel() // request ends; batch must keep running
	_, finished := task.Report()
	assert.False(t, finished)

	close(br.release)
	rep, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Indexed)
	assert.NoError(t, <-br.ctxErr, "batch context must not inherit cancellation")

	select {
	case <-task.Done():
	default:
		t.Fatal("Done must be closed after Wait returns")
	}
}

func TestRunner_BusyWhenSaturated(t *testing.T) {
	br := newBlockingRunner()
	r, err := NewRunner(br, 1, nil)
	require.NoError(t, err)
	defer func() { _ = r.Release(time.Second) }()

	_, err = r.Submit(context.Background(), []string{"https://a"})
	require.NoError(t, err)
	<-br.started

	_, err = r.Submit(context.Background(), []string{"https://b"})
	assert.ErrorIs(t, err, domain.ErrIngestBusy)

	close(br.release)
}

func TestTask_WaitHonoursContext(t *testing.T) {
	task := newTask([]string{"https://a"})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := task.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTask_UniqueIDs(t *testing.T) {
	a, b := newTask(nil), newTask(nil)
	assert.NotEqual(t, a.ID, b.ID)
}
