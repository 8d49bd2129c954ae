package workflow

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/floworc/floworc/planner"
	"github.com/floworc/floworc/store"
	"github.com/floworc/floworc/tool"
	"github.com/floworc/floworc/types"
)

// Generator turns task descriptions into stored workflow plans.
type Generator struct {
	planner  planner.Planner
	registry *tool.Registry
	store    store.WorkflowStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewGenerator creates a workflow generator.
func NewGenerator(p planner.Planner, registry *tool.Registry, ws store.WorkflowStore, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		planner:  p,
		registry: registry,
		store:    ws,
		logger:   logger.With(zap.String("component", "generator")),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Generate plans a workflow for the task and persists it in the
// generated state. Nothing is persisted when planning or validation
// fails, so a workflow either exists complete or not at all.
func (g *Generator) Generate(ctx context.Context, taskDescription string, dataInventory map[string]any, ownerID string) (*types.Workflow, error) {
	taskDescription = strings.TrimSpace(taskDescription)
	if taskDescription == "" {
		return nil, types.NewError(types.ErrInvalidRequest, "task description is required")
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, types.NewError(types.ErrInvalidRequest, "owner id is required")
	}

	planned, err := g.planner.Plan(ctx, taskDescription, dataInventory)
	if err != nil {
		return nil, err
	}
	// Planner implementations are not trusted to validate this: a
	// zero-agent workflow would sail through approval and complete
	// vacuously.
	if len(planned) == 0 {
		return nil, types.NewGenerationError("plan contains zero agents")
	}

	agents := make([]types.AgentSpec, len(planned))
	for i, pa := range planned {
		for _, toolName := range pa.Tools {
			if _, err := g.registry.Resolve(toolName); err != nil {
				return nil, types.NewGenerationError(
					"planned agent " + pa.Name + " references " + toolName + ", which is not a known tool")
			}
		}
		agents[i] = types.AgentSpec{
			Name:           pa.Name,
			Role:           pa.Role,
			PromptTemplate: pa.PromptTemplate,
			Tools:          append([]string(nil), pa.Tools...),
			Position:       i,
		}
	}

	wf := &types.Workflow{
		ID:              types.NewID("wf"),
		TaskDescription: taskDescription,
		DataInventory:   dataInventory,
		Agents:          agents,
		Status:          types.WorkflowGenerated,
		OwnerID:         ownerID,
		CreatedAt:       g.now(),
	}

	if err := g.store.Save(ctx, wf); err != nil {
		return nil, types.NewError(types.ErrInternalError, "failed to persist workflow").WithCause(err)
	}

	g.logger.Info("workflow generated",
		zap.String("workflow_id", wf.ID),
		zap.String("owner_id", ownerID),
		zap.Int("agents", len(agents)))
	return wf, nil
}
