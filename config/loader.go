package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader loads configuration with the priority
// defaults -> YAML file -> environment variables.
type Loader struct {
	configPath string
	envPrefix  string
}

// NewLoader creates a configuration loader.
func NewLoader() *Loader {
	return &Loader{envPrefix: "FLOWORC"}
}

// WithConfigPath sets the YAML file path. An empty path skips the file.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix sets the environment variable prefix (default FLOWORC).
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// Load assembles the final configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	if l.configPath != "" {
		data, err := os.ReadFile(l.configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", l.configPath, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", l.configPath, err)
		}
	}

	l.applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides selected fields from environment variables.
// Secrets and deployment-specific endpoints are deliberately env-first.
func (l *Loader) applyEnv(cfg *Config) {
	l.envString("SERVER_ADDR", &cfg.Server.Addr)
	l.envString("LOG_LEVEL", &cfg.Log.Level)
	l.envString("LOG_FORMAT", &cfg.Log.Format)

	l.envString("STORE_BACKEND", &cfg.Store.Backend)
	l.envString("STORE_EXECUTION_BACKEND", &cfg.Store.ExecutionBackend)
	l.envString("MONGO_URI", &cfg.Store.Mongo.URI)
	l.envString("MONGO_DATABASE", &cfg.Store.Mongo.Database)
	l.envString("SQLITE_PATH", &cfg.Store.SQLite.Path)
	l.envString("REDIS_ADDR", &cfg.Store.Redis.Addr)
	l.envString("REDIS_PASSWORD", &cfg.Store.Redis.Password)
	l.envInt("REDIS_DB", &cfg.Store.Redis.DB)

	l.envString("PLANNER_BASE_URL", &cfg.Planner.BaseURL)
	l.envString("PLANNER_API_KEY", &cfg.Planner.APIKey)
	l.envString("PLANNER_MODEL", &cfg.Planner.Model)
	l.envInt("PLANNER_RPM", &cfg.Planner.RequestsPerMinute)
	l.envDuration("PLANNER_TIMEOUT", &cfg.Planner.Timeout)

	l.envString("EMBEDDING_BASE_URL", &cfg.Embedding.BaseURL)
	l.envString("EMBEDDING_API_KEY", &cfg.Embedding.APIKey)
	l.envString("EMBEDDING_MODEL", &cfg.Embedding.Model)

	l.envString("SANDBOX_MODE", &cfg.Sandbox.Mode)
	l.envString("WEBSEARCH_ENDPOINT", &cfg.WebSearch.Endpoint)
	l.envString("WEBSEARCH_API_KEY", &cfg.WebSearch.APIKey)
}

func (l *Loader) envString(key string, dst *string) {
	if v, ok := os.LookupEnv(l.envPrefix + "_" + key); ok {
		*dst = v
	}
}

func (l *Loader) envInt(key string, dst *int) {
	if v, ok := os.LookupEnv(l.envPrefix + "_" + key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (l *Loader) envDuration(key string, dst *time.Duration) {
	if v, ok := os.LookupEnv(l.envPrefix + "_" + key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "mongo", "sqlite":
	default:
		return fmt.Errorf("invalid store backend %q", c.Store.Backend)
	}
	switch c.Store.ExecutionBackend {
	case "", "memory", "mongo", "sqlite", "redis":
	default:
		return fmt.Errorf("invalid execution store backend %q", c.Store.ExecutionBackend)
	}
	switch c.VectorStore.DefaultBackend {
	case "memory", "mongo":
	default:
		return fmt.Errorf("invalid vector store backend %q", c.VectorStore.DefaultBackend)
	}
	switch c.Sandbox.Mode {
	case "docker", "process":
	default:
		return fmt.Errorf("invalid sandbox mode %q", c.Sandbox.Mode)
	}
	if c.VectorStore.ChunkOverlap >= c.VectorStore.ChunkSize {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d",
			c.VectorStore.ChunkOverlap, c.VectorStore.ChunkSize)
	}
	return nil
}
