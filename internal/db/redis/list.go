package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/hybridsearch/internal/db"
)

// LPush prepends values to a list in one command and returns the new length.
func (s *Store) LPush(ctx context.Context, key string, values ...string) (int64, error) {
	if len(values) == 0 {
		return s.LLen(ctx, key)
	}
	cmd := s.b().Lpush().Key(key).Element(values...).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, opErr(db.OpLPush, err)
	}
	return n, nil
}

// LLen returns the list length. A missing key has length 0.
func (s *Store) LLen(ctx context.Context, key string) (int64, error) {
	cmd := s.b().Llen().Key(key).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, opErr(db.OpLLen, err)
	}
	return n, nil
}

// RPopCount pops up to count values from the tail (oldest LPUSHed first).
func (s *Store) RPopCount(ctx context.Context, key string, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}
	cmd := s.b().Rpop().Key(key).Count(int64(count)).Build()
	vals, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, opErr(db.OpRPop, err)
	}
	return vals, nil
}
