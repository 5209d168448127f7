// Package queue is the gateway to the shared crawl work list.
package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/hybridsearch/internal/db"
	"github.com/kailas-cloud/hybridsearch/internal/domain"
)

// DefaultKey is the list read by external crawl workers.
const DefaultKey = "crawl.queue"

// store is the consumer interface for queue operations (ISP).
type store interface {
	LPush(ctx context.Context, key string, values ...string) (int64, error)
	LLen(ctx context.Context, key string) (int64, error)
	RPopCount(ctx context.Context, key string, count int) ([]string, error)
}

// Repo appends to and drains one list. Producers push on the left,
// consumers pop on the right, so the list is FIFO.
type Repo struct {
	store store
	key   string
}

// New creates a queue repository; an empty key defaults to DefaultKey.
func New(s store, key string) *Repo {
	if key == "" {
		key = DefaultKey
	}
	return &Repo{store: s, key: key}
}

// Key returns the list name.
func (r *Repo) Key() string { return r.key }

// Enqueue appends urls in order with a single round trip and returns the
// list length after the push.
func (r *Repo) Enqueue(ctx context.Context, urls []string) (int64, error) {
	length, err := r.store.LPush(ctx, r.key, urls...)
	if err != nil {
		return 0, fmt.Errorf("push %s: %w", r.key, classify(err))
	}
	return length, nil
}

// Len returns the number of pending entries.
func (r *Repo) Len(ctx context.Context) (int64, error) {
	n, err := r.store.LLen(ctx, r.key)
	if err != nil {
		return 0, fmt.Errorf("len %s: %w", r.key, classify(err))
	}
	return n, nil
}

// Pop removes up to n of the oldest entries. An empty list yields nil.
func (r *Repo) Pop(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	items, err := r.store.RPopCount(ctx, r.key, n)
	if err != nil {
		return nil, fmt.Errorf("pop %s: %w", r.key, classify(err))
	}
	return items, nil
}

func classify(err error) error {
	if errors.Is(err, db.ErrUnavailable) {
		return fmt.Errorf("%w: %w", domain.ErrQueueUnavailable, err)
	}
	return err
}
