// Package floworc provides an embedded, in-memory assembly of the
// workflow system for library use. It wires the planner, tool registry,
// generator, lifecycle, and execution engine over memory stores so a
// program can generate, approve, and run workflows without the HTTP
// service.
//
// Usage:
//
//	sys, err := floworc.New(floworc.WithOpenAI("gpt-4o"))
//	wf, err := sys.Generator.Generate(ctx, task, inventory, "owner")
//	wf, err = sys.Lifecycle.Approve(ctx, wf.ID)
//	exec, err := sys.Engine.Execute(ctx, wf.ID, userData)
package floworc

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/floworc/floworc/engine"
	"github.com/floworc/floworc/planner"
	"github.com/floworc/floworc/sandbox"
	"github.com/floworc/floworc/store"
	"github.com/floworc/floworc/tool"
	"github.com/floworc/floworc/vectorstore"
	"github.com/floworc/floworc/workflow"
)

// System bundles the wired components. All state lives in memory.
type System struct {
	Workflows  store.WorkflowStore
	Executions store.ExecutionStore
	Registry   *tool.Registry
	Generator  *workflow.Generator
	Lifecycle  *workflow.Lifecycle
	Engine     *engine.Engine
}

// Option configures the system created by New.
type Option func(*options)

type options struct {
	chat     planner.ChatClient
	embedder vectorstore.Embedder
	sandbox  *sandbox.Executor
	search   tool.SearchProvider
	logger   *zap.Logger
	topK     int
}

// WithChatClient sets a pre-built chat client for planning and agents.
func WithChatClient(c planner.ChatClient) Option {
	return func(o *options) { o.chat = c }
}

// WithOpenAI creates an OpenAI chat client using the given model.
// API key is read from the OPENAI_API_KEY environment variable.
func WithOpenAI(model string) Option {
	return func(o *options) {
		o.chat = planner.NewOpenAIClient(planner.OpenAIConfig{
			Model:  model,
			APIKey: os.Getenv("OPENAI_API_KEY"),
		}, o.logger)
	}
}

// WithEmbedder sets the embedding client used by RAG tools.
func WithEmbedder(e vectorstore.Embedder) Option {
	return func(o *options) { o.embedder = e }
}

// WithSandbox enables the code_executor tool.
func WithSandbox(e *sandbox.Executor) Option {
	return func(o *options) { o.sandbox = e }
}

// WithSearchProvider enables live results for the web_search tool.
func WithSearchProvider(p tool.SearchProvider) Option {
	return func(o *options) { o.search = p }
}

// WithLogger sets a custom zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTopK sets the retrieval depth for RAG queries.
func WithTopK(k int) Option {
	return func(o *options) { o.topK = k }
}

// New wires a complete in-memory system. A chat client is required; the
// embedder defaults to the OpenAI embeddings API with the key from
// OPENAI_API_KEY.
func New(opts ...Option) (*System, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.chat == nil {
		return nil, fmt.Errorf("a chat client is required: use WithOpenAI or WithChatClient")
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.embedder == nil {
		o.embedder = vectorstore.NewOpenAIEmbedder(vectorstore.OpenAIEmbedderConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
		}, o.logger)
	}

	registry := tool.NewRegistry(o.logger)
	tool.RegisterBuiltins(registry, tool.BuiltinConfig{
		Chat:    o.chat,
		Sandbox: o.sandbox,
		Search:  o.search,
		TopK:    o.topK,
	}, o.logger)

	chunker, err := vectorstore.NewChunker(vectorstore.DefaultChunkerConfig(), o.logger)
	if err != nil {
		return nil, fmt.Errorf("build chunker: %w", err)
	}
	provCfg := vectorstore.DefaultProvisionerConfig()
	if o.topK > 0 {
		provCfg.TopK = o.topK
	}
	provisioner := vectorstore.NewProvisioner(provCfg, chunker, o.embedder, nil, o.logger)

	workflows := store.NewMemoryWorkflowStore()
	executions := store.NewMemoryExecutionStore()

	pl := planner.NewChatPlanner(o.chat, registry.Contracts(), o.logger)
	agents := engine.NewAgentExecutor(registry, o.chat, o.logger)

	return &System{
		Workflows:  workflows,
		Executions: executions,
		Registry:   registry,
		Generator:  workflow.NewGenerator(pl, registry, workflows, o.logger),
		Lifecycle:  workflow.NewLifecycle(workflows, o.logger),
		Engine:     engine.NewEngine(workflows, executions, agents, provisioner, nil, o.logger),
	}, nil
}
