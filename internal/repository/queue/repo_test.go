package queue

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/kailas-cloud/hybridsearch/internal/db"
	"github.com/kailas-cloud/hybridsearch/internal/domain"
)

// listStore is an in-memory list with Redis LPUSH/RPOP semantics.
type listStore struct {
	items  map[string][]string
	pushes int
	err    error
}

func newListStore() *listStore { return &listStore{items: map[string][]string{}} }

func (s *listStore) LPush(_ context.Context, key string, values ...string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.pushes++
	for _, v := range values {
		s.items[key] = append([]string{v}, s.items[key]...)
	}
	return int64(len(s.items[key])), nil
}

func (s *listStore) LLen(_ context.Context, key string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return int64(len(s.items[key])), nil
}

func (s *listStore) RPopCount(_ context.Context, key string, count int) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	list := s.items[key]
	if len(list) == 0 {
		return nil, nil
	}
	count = min(count, len(list))
	var out []string
	for range count {
		out = append(out, list[len(list)-1])
		list = list[:len(list)-1]
	}
	s.items[key] = list
	return out, nil
}

func TestEnqueue_SingleRoundTripFIFO(t *testing.T) {
	s := newListStore()
	r := New(s, "")

	n, err := r.Enqueue(context.Background(), []string{"https://a", "https://b", "https://c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("length = %d, want 3", n)
	}
	if s.pushes != 1 {
		t.Errorf("pushes = %d, want 1", s.pushes)
	}
	if r.Key() != DefaultKey {
		t.Errorf("key = %q, want %q", r.Key(), DefaultKey)
	}

	got, err := r.Pop(context.Background(), 2)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if !slices.Equal(got, []string{"https://a", "https://b"}) {
		t.Errorf("pop = %v, want oldest first", got)
	}

	left, _ := r.Len(context.Background())
	if left != 1 {
		t.Errorf("len = %d, want 1", left)
	}
}

func TestPop_EmptyAndZero(t *testing.T) {
	r := New(newListStore(), "jobs")

	got, err := r.Pop(context.Background(), 5)
	if err != nil || got != nil {
		t.Errorf("empty pop = %v, %v", got, err)
	}
	got, err = r.Pop(context.Background(), 0)
	if err != nil || got != nil {
		t.Errorf("zero pop = %v, %v", got, err)
	}
}

func TestUnavailable(t *testing.T) {
	s := newListStore()
	s.err = &db.Error{Op: db.OpLPush, Err: db.ErrUnavailable}
	r := New(s, "")

	if _, err := r.Enqueue(context.Background(), []string{"https://a"}); !errors.Is(err, domain.ErrQueueUnavailable) {
		t.Errorf("enqueue: expected ErrQueueUnavailable, got %v", err)
	}
	if _, err := r.Len(context.Background()); !errors.Is(err, domain.ErrQueueUnavailable) {
		t.Errorf("len: expected ErrQueueUnavailable, got %v", err)
	}
}

func TestServerErrorNotClassified(t *testing.T) {
	s := newListStore()
	s.err = &db.Error{Op: db.OpLLen, Err: errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")}

	_, err := New(s, "").Len(context.Background())
	if err == nil || errors.Is(err, domain.ErrQueueUnavailable) {
		t.Errorf("expected plain error, got %v", err)
	}
}
