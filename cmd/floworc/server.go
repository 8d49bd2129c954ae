package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/floworc/floworc/api/handlers"
	"github.com/floworc/floworc/config"
	"github.com/floworc/floworc/engine"
	"github.com/floworc/floworc/internal/metrics"
	"github.com/floworc/floworc/internal/server"
	"github.com/floworc/floworc/planner"
	"github.com/floworc/floworc/sandbox"
	"github.com/floworc/floworc/store"
	"github.com/floworc/floworc/tool"
	"github.com/floworc/floworc/vectorstore"
	"github.com/floworc/floworc/workflow"
)

// Server wires configuration into the running service: stores, planner,
// tools, engine, HTTP handlers, and the managed listener.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	stores      *store.Stores
	httpManager *server.Manager
	collector   *metrics.Collector
}

// NewServer creates an unstarted server.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, logger: logger}
}

// Start opens the backends, builds the component graph, and begins
// serving HTTP.
func (s *Server) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.collector = metrics.NewCollector(s.cfg.Metrics.Namespace, s.logger)

	stores, err := store.Open(ctx, s.cfg.Store, s.logger)
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	s.stores = stores

	router, err := s.buildRouter()
	if err != nil {
		return err
	}

	s.httpManager = server.NewManager(router.Mux(), server.Config{
		Addr:            s.cfg.Server.Addr,
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     s.cfg.Server.IdleTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}, s.logger)

	if err := s.httpManager.Start(); err != nil {
		return fmt.Errorf("start HTTP server: %w", err)
	}

	s.logger.Info("server started",
		zap.String("addr", s.httpManager.Addr()),
		zap.String("store_backend", s.cfg.Store.Backend),
		zap.String("sandbox_mode", s.cfg.Sandbox.Mode),
	)
	return nil
}

func (s *Server) buildRouter() (*handlers.Router, error) {
	chat := planner.NewOpenAIClient(planner.OpenAIConfig{
		BaseURL:           s.cfg.Planner.BaseURL,
		APIKey:            s.cfg.Planner.APIKey,
		Model:             s.cfg.Planner.Model,
		Timeout:           s.cfg.Planner.Timeout,
		RequestsPerMinute: s.cfg.Planner.RequestsPerMinute,
	}, s.logger)

	registry := tool.NewRegistry(s.logger)
	tool.RegisterBuiltins(registry, tool.BuiltinConfig{
		Chat:             chat,
		Sandbox:          s.buildSandbox(),
		Search:           s.buildSearchProvider(),
		TopK:             s.cfg.VectorStore.TopK,
		MaxSearchResults: s.cfg.WebSearch.MaxResults,
	}, s.logger)

	provisioner, err := s.buildProvisioner()
	if err != nil {
		return nil, err
	}

	pl := planner.NewChatPlanner(chat, registry.Contracts(), s.logger,
		planner.WithTemperature(s.cfg.Planner.Temperature),
		planner.WithMaxTokens(s.cfg.Planner.MaxTokens),
	)

	generator := workflow.NewGenerator(pl, registry, s.stores.Workflows, s.logger)
	lifecycle := workflow.NewLifecycle(s.stores.Workflows, s.logger)
	agents := engine.NewAgentExecutor(registry, chat, s.logger)
	eng := engine.NewEngine(s.stores.Workflows, s.stores.Executions, agents, provisioner, s.collector, s.logger)

	health := handlers.NewHealthHandler(s.logger)
	if s.stores.MongoDB != nil {
		client := s.stores.MongoDB.Client()
		health.RegisterCheck(handlers.HealthCheckFunc{
			CheckName: "mongo",
			Fn: func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			},
		})
	}

	return &handlers.Router{
		Workflows:  handlers.NewWorkflowHandler(generator, lifecycle, s.collector, s.logger),
		Executions: handlers.NewExecutionHandler(eng, s.logger),
		Health:     health,
		Metrics:    s.collector,
	}, nil
}

func (s *Server) buildSandbox() *sandbox.Executor {
	cfg := sandbox.DefaultConfig()
	cfg.Mode = sandbox.Mode(s.cfg.Sandbox.Mode)
	if s.cfg.Sandbox.Timeout > 0 {
		cfg.Timeout = s.cfg.Sandbox.Timeout
	}
	if s.cfg.Sandbox.MaxMemoryMB > 0 {
		cfg.MaxMemoryMB = s.cfg.Sandbox.MaxMemoryMB
	}
	if s.cfg.Sandbox.MaxCPUPercent > 0 {
		cfg.MaxCPUPercent = s.cfg.Sandbox.MaxCPUPercent
	}
	if s.cfg.Sandbox.MaxOutputBytes > 0 {
		cfg.MaxOutputBytes = s.cfg.Sandbox.MaxOutputBytes
	}
	cfg.NetworkEnabled = s.cfg.Sandbox.NetworkEnabled
	if len(s.cfg.Sandbox.Languages) > 0 {
		cfg.AllowedLanguages = cfg.AllowedLanguages[:0]
		for _, lang := range s.cfg.Sandbox.Languages {
			cfg.AllowedLanguages = append(cfg.AllowedLanguages, sandbox.Language(lang))
		}
	}

	var backend sandbox.Backend
	switch cfg.Mode {
	case sandbox.ModeProcess:
		backend = sandbox.NewProcessBackend(s.logger, true)
	default:
		backend = sandbox.NewDockerBackend(s.logger)
	}
	return sandbox.NewExecutor(cfg, backend, s.logger)
}

func (s *Server) buildSearchProvider() tool.SearchProvider {
	if s.cfg.WebSearch.Endpoint == "" {
		return nil
	}
	return tool.NewHTTPSearchProvider(s.cfg.WebSearch.Endpoint, s.cfg.WebSearch.APIKey, 15*time.Second)
}

func (s *Server) buildProvisioner() (*vectorstore.Provisioner, error) {
	chunkerCfg := vectorstore.DefaultChunkerConfig()
	if s.cfg.VectorStore.ChunkSize > 0 {
		chunkerCfg.ChunkSize = s.cfg.VectorStore.ChunkSize
	}
	if s.cfg.VectorStore.ChunkOverlap > 0 {
		chunkerCfg.ChunkOverlap = s.cfg.VectorStore.ChunkOverlap
	}
	if s.cfg.VectorStore.MinChunkSize > 0 {
		chunkerCfg.MinChunkSize = s.cfg.VectorStore.MinChunkSize
	}
	chunker, err := vectorstore.NewChunker(chunkerCfg, s.logger)
	if err != nil {
		return nil, fmt.Errorf("build chunker: %w", err)
	}

	embedder := vectorstore.NewOpenAIEmbedder(vectorstore.OpenAIEmbedderConfig{
		BaseURL: s.cfg.Embedding.BaseURL,
		APIKey:  s.cfg.Embedding.APIKey,
		Model:   s.cfg.Embedding.Model,
	}, s.logger)

	provCfg := vectorstore.DefaultProvisionerConfig()
	provCfg.DefaultBackend = vectorstore.Backend(s.cfg.VectorStore.DefaultBackend)
	if s.cfg.VectorStore.TopK > 0 {
		provCfg.TopK = s.cfg.VectorStore.TopK
	}
	return vectorstore.NewProvisioner(provCfg, chunker, embedder, s.stores.MongoDB, s.logger), nil
}

// WaitForShutdown blocks until the server stops, then closes the stores.
func (s *Server) WaitForShutdown() {
	s.httpManager.WaitForShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.stores.Close(ctx); err != nil {
		s.logger.Error("failed to close stores", zap.Error(err))
	}
}
