package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/hybridsearch/internal/db"
)

// Commit waits until writes issued before it are durable.
//
// RediSearch indexes hashes synchronously on write, so the only remaining
// step is durability: WAITAOF for fsync on the primary (plus replicas), or
// WAIT for replica acknowledgement. With no replicas and AOF off Commit
// sends no command and records no durability barrier: writes are visible
// but only as durable as the server's own persistence settings.
func (s *Store) Commit(ctx context.Context, opts db.CommitOptions) error {
	timeout := strconv.FormatInt(opts.Timeout.Milliseconds(), 10)

	if opts.AOF {
		cmd := s.b().Arbitrary("WAITAOF").Args("1", strconv.Itoa(opts.Replicas), timeout).Build()
		acks, err := s.do(ctx, cmd).AsIntSlice()
		if err != nil {
			return opErr(db.OpWaitAOF, err)
		}
		if len(acks) != 2 || acks[0] < 1 || acks[1] < int64(opts.Replicas) {
			return &db.Error{Op: db.OpWaitAOF, Err: fmt.Errorf("%w: acks %v", db.ErrNotDurable, acks)}
		}
		return nil
	}

	if opts.Replicas <= 0 {
		return nil
	}

	cmd := s.b().Arbitrary("WAIT").Args(strconv.Itoa(opts.Replicas), timeout).Build()
	acked, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return opErr(db.OpWait, err)
	}
	if acked < int64(opts.Replicas) {
		return &db.Error{Op: db.OpWait, Err: fmt.Errorf("%w: %d of %d", db.ErrNotDurable, acked, opts.Replicas)}
	}
	return nil
}
