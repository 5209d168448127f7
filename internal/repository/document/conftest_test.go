package document

import (
	"context"

	"github.com/kailas-cloud/hybridsearch/internal/db"
)

// mockStore implements the consumer interface for tests, backed by a map.
type mockStore struct {
	hashes     map[string]map[string]string
	hsetErr    error
	commitErr  error
	commits    []db.CommitOptions
	count      int
	countErr   error
	countIndex string
}

func newMockStore() *mockStore {
	return &mockStore{hashes: map[string]map[string]string{}}
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if m.hsetErr != nil {
		return m.hsetErr
	}
	h, ok := m.hashes[key]
	if !ok {
		h = map[string]string{}
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	h, ok := m.hashes[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return h, nil
}

func (m *mockStore) Commit(_ context.Context, opts db.CommitOptions) error {
	m.commits = append(m.commits, opts)
	return m.commitErr
}

func (m *mockStore) SearchCount(_ context.Context, index, _ string) (int, error) {
	m.countIndex = index
	return m.count, m.countErr
}
