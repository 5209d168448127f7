package redis

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/hybridsearch/internal/db"
)

var _ db.Store = (*Store)(nil)

const (
	defaultDialTimeout  = 5 * time.Second
	defaultWriteTimeout = 10 * time.Second

	readyPollMin = 100 * time.Millisecond
	readyPollMax = time.Second
)

// Config holds connection parameters for one Redis deployment. The index
// and the crawl queue may live on different deployments.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int

	// Name is sent as CLIENT SETNAME, e.g. "hybridsearch-index".
	Name string

	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

// Store implements db.Store over rueidis. It needs Redis 8+ or Redis Stack
// for the FT.* commands; list and hash commands work on any Redis.
type Store struct {
	client rueidis.Client
	name   string
}

// NewStore connects lazily; call WaitForReady before serving traffic.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("redis: at least one address is required")
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:      cfg.Addrs,
		Username:         cfg.Username,
		Password:         cfg.Password,
		SelectDB:         cfg.DB,
		ClientName:       cfg.Name,
		Dialer:           net.Dialer{Timeout: cfg.DialTimeout},
		ConnWriteTimeout: cfg.WriteTimeout,
		DisableCache:     true,
		// FT.SEARCH replies are parsed as RESP2 arrays.
		AlwaysRESP2: true,
	})
	if err != nil {
		return nil, fmt.Errorf("redis %s: connect %v: %w", cfg.Name, cfg.Addrs, err)
	}

	return &Store{client: client, name: cfg.Name}, nil
}

// Ping checks connectivity. Failures are reported as db.ErrUnavailable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return opErr("ping", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings with a growing interval until the server answers or
// timeout elapses. The last ping error is kept in the returned error.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	wait := readyPollMin
	var last error
	for {
		if last = s.Ping(ctx); last == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("redis %s not ready after %s: %w", s.name, timeout, last)
		case <-time.After(wait):
		}
		wait = min(wait*2, readyPollMax)
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// opErr wraps a command failure; anything that is not a server reply is
// marked db.ErrUnavailable.
func opErr(op string, err error) error {
	if _, ok := rueidis.IsRedisErr(err); !ok {
		err = fmt.Errorf("%w: %w", db.ErrUnavailable, err)
	}
	return &db.Error{Op: op, Err: err}
}

// isRedisErr checks if err is a server reply containing substr, ignoring case.
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
