package tool

import (
	"go.uber.org/zap"

	"github.com/floworc/floworc/planner"
	"github.com/floworc/floworc/sandbox"
)

// BuiltinConfig carries the dependencies of the builtin tools.
type BuiltinConfig struct {
	Chat             planner.ChatClient
	Sandbox          *sandbox.Executor
	Search           SearchProvider
	TopK             int
	MaxSearchResults int
}

// RegisterBuiltins registers every builtin tool. Tools whose dependency
// is missing are registered anyway and fail at invocation time, so the
// planner catalog stays stable across deployments.
func RegisterBuiltins(r *Registry, cfg BuiltinConfig, logger *zap.Logger) {
	r.Register(NewRAGBuilder(logger))
	r.Register(NewRAGChat(cfg.Chat, cfg.TopK, logger))
	r.Register(NewLLMChat(cfg.Chat, logger))
	r.Register(NewReportGenerator(logger))
	r.Register(NewWebSearch(cfg.Search, cfg.MaxSearchResults, logger))
	if cfg.Sandbox != nil {
		r.Register(NewCodeExecutor(cfg.Sandbox, logger))
	}
}
