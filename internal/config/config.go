package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the hybridsearch API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Queue     QueueConfig     `yaml:"queue"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Index     IndexConfig     `yaml:"index"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the index store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// QueueConfig holds the crawl queue settings. Empty addrs reuse the database.
type QueueConfig struct {
	Addrs    []string          `yaml:"addrs"`
	Password string            `yaml:"password"`
	Key      string            `yaml:"key"`
	Worker   QueueWorkerConfig `yaml:"worker"`
}

// QueueWorkerConfig controls the in-process queue drain worker.
type QueueWorkerConfig struct {
	Enabled         bool `yaml:"enabled"`
	PollIntervalSec int  `yaml:"poll_interval_sec"`
	BatchSize       int  `yaml:"batch_size"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider            string `yaml:"provider"` // openai, langchain
	APIKey              string `yaml:"api_key"`
	BaseURL             string `yaml:"base_url"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	SendDimensions      bool   `yaml:"send_dimensions"` // pass dimensions upstream (Matryoshka models)
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
	CacheTTLSec         int    `yaml:"cache_ttl_sec"`    // 0 = no expiry
	WarmupRetrySec      int    `yaml:"warmup_retry_sec"` // pause between readiness probes
}

// SearchConfig holds query bounds and fusion settings.
type SearchConfig struct {
	DefaultRows       int          `yaml:"default_rows"`
	MaxRows           int          `yaml:"max_rows"`
	DefaultRerankDocs int          `yaml:"default_rerank_docs"`
	MaxRerankDocs     int          `yaml:"max_rerank_docs"`
	SnippetRunes      int          `yaml:"snippet_runes"`
	Fusion            FusionConfig `yaml:"fusion"`
}

// FusionConfig allows replacing the default fusion weights. Weights are only
// read when OverrideWeights is set.
type FusionConfig struct {
	OverrideWeights bool    `yaml:"override_weights"`
	LexicalOnly     float64 `yaml:"lexical_only"`
	BothLexical     float64 `yaml:"both_lexical"`
	BothVector      float64 `yaml:"both_vector"`
	VectorOnly      float64 `yaml:"vector_only"`
}

// IngestConfig holds fetch and extraction settings.
type IngestConfig struct {
	Workers         int    `yaml:"workers"`
	PolitenessMs    int    `yaml:"politeness_delay_ms"`
	FetchTimeoutSec int    `yaml:"fetch_timeout_sec"`
	UserAgent       string `yaml:"user_agent"`
	MinContentRunes int    `yaml:"min_content_runes"`
	MaxContentRunes int    `yaml:"max_content_runes"`
	MaxBodyBytes    int64  `yaml:"max_body_bytes"`
}

// IndexConfig holds HNSW index, key layout and commit settings.
type IndexConfig struct {
	KeyPrefix       string `yaml:"key_prefix"`
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
	CommitReplicas  int    `yaml:"commit_replicas"`
	CommitTimeoutMs int    `yaml:"commit_timeout_ms"`
	CommitAOF       bool   `yaml:"commit_aof"`
}

// Load reads configuration from a YAML file by environment name (local, docker, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates raw YAML configuration.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}

	if len(c.Queue.Addrs) == 0 {
		c.Queue.Addrs = c.Database.Addrs
		if c.Queue.Password == "" {
			c.Queue.Password = c.Database.Password
		}
	}
	if c.Queue.Key == "" {
		c.Queue.Key = "crawl.queue"
	}
	if c.Queue.Worker.PollIntervalSec <= 0 {
		c.Queue.Worker.PollIntervalSec = 5
	}
	if c.Queue.Worker.BatchSize <= 0 {
		c.Queue.Worker.BatchSize = 10
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "all-MiniLM-L6-v2"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 384
	}
	if c.Embedding.WarmupRetrySec <= 0 {
		c.Embedding.WarmupRetrySec = 5
	}

	if c.Search.DefaultRows <= 0 {
		c.Search.DefaultRows = 10
	}
	if c.Search.MaxRows <= 0 {
		c.Search.MaxRows = 100
	}
	if c.Search.DefaultRerankDocs <= 0 {
		c.Search.DefaultRerankDocs = 20
	}
	if c.Search.MaxRerankDocs <= 0 {
		c.Search.MaxRerankDocs = 200
	}
	if c.Search.SnippetRunes <= 0 {
		c.Search.SnippetRunes = 200
	}

	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = 4
	}
	if c.Ingest.PolitenessMs <= 0 {
		c.Ingest.PolitenessMs = 2000
	}
	if c.Ingest.FetchTimeoutSec <= 0 {
		c.Ingest.FetchTimeoutSec = 30
	}
	if c.Ingest.UserAgent == "" {
		c.Ingest.UserAgent = "Mozilla/5.0 (compatible; HybridSearchBot/1.0)"
	}
	if c.Ingest.MinContentRunes <= 0 {
		c.Ingest.MinContentRunes = 50
	}
	if c.Ingest.MaxContentRunes <= 0 {
		c.Ingest.MaxContentRunes = 5000
	}
	if c.Ingest.MaxBodyBytes <= 0 {
		c.Ingest.MaxBodyBytes = 5 << 20
	}

	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "hs:"
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Index.CommitTimeoutMs <= 0 {
		c.Index.CommitTimeoutMs = 1000
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if len(c.Queue.Addrs) == 0 {
		return fmt.Errorf("queue.addrs is required")
	}
	switch c.Embedding.Provider {
	case "openai", "langchain":
	default:
		return fmt.Errorf("embedding.provider must be \"openai\" or \"langchain\", got %q", c.Embedding.Provider)
	}
	if c.Search.DefaultRows > c.Search.MaxRows {
		return fmt.Errorf("search.default_rows (%d) exceeds search.max_rows (%d)",
			c.Search.DefaultRows, c.Search.MaxRows)
	}
	if c.Search.DefaultRerankDocs > c.Search.MaxRerankDocs {
		return fmt.Errorf("search.default_rerank_docs (%d) exceeds search.max_rerank_docs (%d)",
			c.Search.DefaultRerankDocs, c.Search.MaxRerankDocs)
	}
	if f := c.Search.Fusion; f.OverrideWeights {
		for name, w := range map[string]float64{
			"lexical_only": f.LexicalOnly,
			"both_lexical": f.BothLexical,
			"both_vector":  f.BothVector,
			"vector_only":  f.VectorOnly,
		} {
			if w < 0 || w > 1 {
				return fmt.Errorf("search.fusion.%s must be within [0, 1], got %g", name, w)
			}
		}
	}
	if c.Ingest.MinContentRunes >= c.Ingest.MaxContentRunes {
		return fmt.Errorf("ingest.min_content_runes (%d) must be below ingest.max_content_runes (%d)",
			c.Ingest.MinContentRunes, c.Ingest.MaxContentRunes)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
