// =============================================================================
// floworc configuration
// =============================================================================
// Unified configuration loading: defaults -> YAML file -> environment
// variables, in increasing priority.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("FLOWORC").
//	    Load()
// =============================================================================
package config

import "time"

// Config is the complete floworc configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Store       StoreConfig       `yaml:"store"`
	Planner     PlannerConfig     `yaml:"planner"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Sandbox     SandboxConfig     `yaml:"sandbox"`
	WebSearch   WebSearchConfig   `yaml:"web_search"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `yaml:"level"`
	// Format: json or console
	Format string `yaml:"format"`
}

// StoreConfig selects and configures the persistence backends.
type StoreConfig struct {
	// Backend for workflow and execution records: memory, mongo, sqlite
	Backend string `yaml:"backend"`

	// ExecutionBackend optionally overrides the backend for execution
	// records only: "" (same as Backend), memory, mongo, sqlite, redis.
	ExecutionBackend string `yaml:"execution_backend"`

	Mongo  MongoConfig  `yaml:"mongo"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	Redis  RedisConfig  `yaml:"redis"`
}

// MongoConfig configures the MongoDB document store.
type MongoConfig struct {
	URI      string        `yaml:"uri"`
	Database string        `yaml:"database"`
	Timeout  time.Duration `yaml:"timeout"`
}

// SQLiteConfig configures the SQLite store.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig configures the Redis execution store.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	PoolSize  int    `yaml:"pool_size"`
	KeyPrefix string `yaml:"key_prefix"`
}

// PlannerConfig configures the LLM planning client.
type PlannerConfig struct {
	BaseURL           string        `yaml:"base_url"`
	APIKey            string        `yaml:"api_key"`
	Model             string        `yaml:"model"`
	Temperature       float32       `yaml:"temperature"`
	MaxTokens         int           `yaml:"max_tokens"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	Timeout           time.Duration `yaml:"timeout"`
}

// EmbeddingConfig configures the embedding client used by the vector
// store provisioner.
type EmbeddingConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// VectorStoreConfig configures provisioned vector stores.
type VectorStoreConfig struct {
	// DefaultBackend: memory or mongo
	DefaultBackend string `yaml:"default_backend"`
	TopK           int    `yaml:"top_k"`
	ChunkSize      int    `yaml:"chunk_size"`
	ChunkOverlap   int    `yaml:"chunk_overlap"`
	MinChunkSize   int    `yaml:"min_chunk_size"`
}

// SandboxConfig configures the code execution sandbox.
type SandboxConfig struct {
	// Mode: docker or process
	Mode           string        `yaml:"mode"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxMemoryMB    int           `yaml:"max_memory_mb"`
	MaxCPUPercent  int           `yaml:"max_cpu_percent"`
	NetworkEnabled bool          `yaml:"network_enabled"`
	MaxOutputBytes int           `yaml:"max_output_bytes"`
	Languages      []string      `yaml:"languages"`
}

// WebSearchConfig configures the web search tool.
type WebSearchConfig struct {
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"api_key"`
	MaxResults int    `yaml:"max_results"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}
