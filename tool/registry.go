package tool

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/floworc/floworc/types"
	"github.com/floworc/floworc/vectorstore"
)

// Invocation carries everything a tool sees when an agent step runs.
type Invocation struct {
	AgentName string
	AgentRole string
	// Prompt is the agent's prompt template with placeholders resolved.
	Prompt string
	// Inputs is the user-supplied execution data.
	Inputs map[string]any
	// Prior holds the results of all previously completed steps.
	Prior []types.StepResult
	// Stores is the execution-scoped vector store session.
	Stores *vectorstore.Session
}

// Result is what a tool produces for one invocation.
type Result struct {
	Output      string
	SideEffects []types.SideEffect
}

// Tool is one callable capability.
type Tool interface {
	Contract() types.ToolContract
	Invoke(ctx context.Context, inv Invocation) (*Result, error)
}

// Registry holds the available tools.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger.With(zap.String("component", "tool_registry")),
	}
}

// Register adds a tool, replacing any previous tool with the same name.
func (r *Registry) Register(t Tool) {
	contract := t.Contract()
	r.mu.Lock()
	r.tools[contract.Name] = t
	r.mu.Unlock()
	r.logger.Debug("tool registered", zap.String("name", contract.Name))
}

// Resolve returns the named tool or an ErrToolNotFound error.
func (r *Registry) Resolve(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, types.NewError(types.ErrToolNotFound, "unknown tool: "+name)
	}
	return t, nil
}

// Contracts returns all tool contracts sorted by name.
func (r *Registry) Contracts() []types.ToolContract {
	r.mu.RLock()
	defer r.mu.RUnlock()
	contracts := make([]types.ToolContract, 0, len(r.tools))
	for _, t := range r.tools {
		contracts = append(contracts, t.Contract())
	}
	sort.Slice(contracts, func(i, j int) bool {
		return contracts[i].Name < contracts[j].Name
	})
	return contracts
}
