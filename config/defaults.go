package config

import "time"

// Default returns the default configuration. Values mirror what a
// single-node development deployment needs; production overrides come
// from YAML and environment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute, // executions are synchronous
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Backend: "memory",
			Mongo: MongoConfig{
				URI:      "mongodb://localhost:27017",
				Database: "floworc",
				Timeout:  10 * time.Second,
			},
			SQLite: SQLiteConfig{
				Path: "./data/floworc.db",
			},
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				PoolSize:  10,
				KeyPrefix: "floworc:",
			},
		},
		Planner: PlannerConfig{
			BaseURL:           "https://api.openai.com/v1",
			Model:             "gpt-4o",
			Temperature:       0.7,
			MaxTokens:         4096,
			RequestsPerMinute: 60,
			Timeout:           60 * time.Second,
		},
		Embedding: EmbeddingConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "text-embedding-3-small",
		},
		VectorStore: VectorStoreConfig{
			DefaultBackend: "memory",
			TopK:           3,
			ChunkSize:      512,
			ChunkOverlap:   102, // 20% overlap
			MinChunkSize:   50,
		},
		Sandbox: SandboxConfig{
			Mode:           "docker",
			Timeout:        30 * time.Second,
			MaxMemoryMB:    512,
			MaxCPUPercent:  50,
			NetworkEnabled: false,
			MaxOutputBytes: 1 << 20,
			Languages:      []string{"python", "bash"},
		},
		WebSearch: WebSearchConfig{
			MaxResults: 5,
		},
		Metrics: MetricsConfig{
			Namespace: "floworc",
		},
	}
}
