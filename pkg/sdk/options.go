package sdk

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	embedder       Embedder
	embeddingModel string

	dimensions int
	keyPrefix  string
	queueKey   string
	politeness time.Duration

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the Redis instance holding the index and the crawl queue.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedder sets the text embedding provider.
// Required for vector and fused search and for indexing; lexical search works without it.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithEmbeddingModel sets the model name reported by Stats.
func WithEmbeddingModel(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.embeddingModel = name
	})
}

// WithDimensions sets the embedding vector size. Default: 384 (all-MiniLM-L6-v2).
func WithDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithKeyPrefix namespaces all index keys. Default: "hs:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithQueueKey sets the crawl queue list name. Default: "crawl.queue".
func WithQueueKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.queueKey = key
	})
}

// WithPoliteness sets the pause between fetches of one Ingest batch.
// Default: 2s. A negative value disables the pause.
func WithPoliteness(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.politeness = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithMetrics registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
