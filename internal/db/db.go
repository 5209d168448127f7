package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	HashStore
	KVStore
	ListStore
	IndexManager
	Searcher
	Committer
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore reads and writes document hashes.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// KVStore holds opaque values such as cached embeddings.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ListStore provides list operations used as a FIFO work queue
// (LPUSH on the producer side, RPOP on the consumer side).
type ListStore interface {
	LPush(ctx context.Context, key string, values ...string) (int64, error)
	LLen(ctx context.Context, key string) (int64, error)
	RPopCount(ctx context.Context, key string, count int) ([]string, error)
}

// IndexManager bootstraps FT indexes. Dropping is left to operators.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchBM25(ctx context.Context, q *TextQuery) (*SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Committer makes previously acknowledged writes durable.
type Committer interface {
	Commit(ctx context.Context, opts CommitOptions) error
}

// CommitOptions controls how Commit waits for durability.
// With AOF set the store waits for fsync (WAITAOF), otherwise for replica acks (WAIT).
// Zero replicas with AOF unset is a no-op round trip.
type CommitOptions struct {
	Replicas int
	Timeout  time.Duration
	AOF      bool
}
