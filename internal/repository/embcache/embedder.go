// Package embcache memoizes embeddings in the key-value store.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/hybridsearch/internal/db"
	"github.com/kailas-cloud/hybridsearch/internal/domain"
)

// Cache outcomes recorded in the "result" label.
const (
	ResultHit    = "hit"
	ResultMiss   = "miss"
	ResultShared = "shared"
)

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Options configures key naming and expiry. Model is folded into the key so
// switching models never serves stale vectors. A non-zero Dimensions rejects
// cached vectors of another size.
type Options struct {
	Prefix     string
	Model      string
	TTL        time.Duration
	Dimensions int
}

// CachedEmbedder serves repeated texts from the store. Concurrent misses for
// the same text share one provider call.
type CachedEmbedder struct {
	inner  domain.Embedder
	store  store
	opts   Options
	group  singleflight.Group
	total  *prometheus.CounterVec
	logger *zap.Logger
}

// New wraps inner. total may be nil; it needs a single "result" label.
func New(inner domain.Embedder, s store, opts Options, total *prometheus.CounterVec, logger *zap.Logger) *CachedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{inner: inner, store: s, opts: opts, total: total, logger: logger}
}

// Key returns the store key of text embedded by model.
func Key(prefix, model, text string) string {
	h := sha256.Sum256([]byte(model + "\x00" + text))
	return prefix + "emb_cache:" + hex.EncodeToString(h[:])
}

// Embed returns a cached vector or asks the provider. Hits report zero tokens.
// Store failures are logged and never fail the call.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := Key(c.opts.Prefix, c.opts.Model, text)

	if vec, ok := c.lookup(ctx, key); ok {
		c.count(ResultHit)
		return domain.EmbeddingResult{Embedding: vec}, nil
	}

	leader := false
	v, err, _ := c.group.Do(key, func() (any, error) {
		leader = true
		res, err := c.inner.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		c.save(ctx, key, res.Embedding)
		return res, nil
	})
	if leader {
		c.count(ResultMiss)
	} else {
		c.count(ResultShared)
	}
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	res := v.(domain.EmbeddingResult) //nolint:forcetypeassert // group only stores EmbeddingResult
	if !leader {
		// Tokens are billed to the caller that ran the request.
		res.PromptTokens, res.TotalTokens = 0, 0
	}
	return res, nil
}

// HealthCheck bypasses the cache and probes the provider.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // passthrough
	}
	return nil
}

func (c *CachedEmbedder) count(result string) {
	if c.total != nil {
		c.total.WithLabelValues(result).Inc()
	}
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return nil, false
	case err != nil:
		c.logger.Warn("Embedding cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	case len(data) == 0:
		return nil, false
	}

	vec, err := db.DecodeVector(string(data))
	if err != nil {
		c.logger.Warn("Embedding cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if c.opts.Dimensions > 0 && len(vec) != c.opts.Dimensions {
		c.logger.Debug("Embedding cache entry has stale dimension",
			zap.String("key", key), zap.Int("got", len(vec)), zap.Int("want", c.opts.Dimensions))
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) save(ctx context.Context, key string, vec []float32) {
	data := []byte(db.EncodeVector(vec))

	var err error
	if c.opts.TTL > 0 {
		err = c.store.SetWithTTL(ctx, key, data, c.opts.TTL)
	} else {
		err = c.store.Set(ctx, key, data)
	}
	if err != nil {
		c.logger.Warn("Embedding cache write failed", zap.String("key", key), zap.Error(err))
	}
}
