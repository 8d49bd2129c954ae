package engine

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/floworc/floworc/internal/metrics"
	"github.com/floworc/floworc/store"
	"github.com/floworc/floworc/tool"
	"github.com/floworc/floworc/types"
	"github.com/floworc/floworc/vectorstore"
)

// Engine executes approved workflows sequentially.
type Engine struct {
	workflows   store.WorkflowStore
	executions  store.ExecutionStore
	agents      *AgentExecutor
	provisioner *vectorstore.Provisioner
	metrics     *metrics.Collector
	logger      *zap.Logger
	now         func() time.Time
}

// NewEngine creates the execution engine. metrics may be nil.
func NewEngine(
	workflows store.WorkflowStore,
	executions store.ExecutionStore,
	agents *AgentExecutor,
	provisioner *vectorstore.Provisioner,
	collector *metrics.Collector,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		workflows:   workflows,
		executions:  executions,
		agents:      agents,
		provisioner: provisioner,
		metrics:     collector,
		logger:      logger.With(zap.String("component", "engine")),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Execute runs the workflow against userData and returns the finished
// execution record. Step failures are encoded in the record, not in the
// error return; a non-nil error means the run could not start or the
// record could not be persisted.
func (e *Engine) Execute(ctx context.Context, workflowID string, userData map[string]any) (*types.Execution, error) {
	wf, err := e.loadWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if wf.Status != types.WorkflowApproved {
		return nil, types.NewInvalidState("execute workflow", string(wf.Status))
	}

	exec := &types.Execution{
		ID:          types.NewID("exec"),
		WorkflowID:  wf.ID,
		UserData:    userData,
		StepResults: []types.StepResult{},
		Status:      types.ExecutionRunning,
		StartedAt:   e.now(),
	}
	if err := e.save(ctx, exec); err != nil {
		return nil, err
	}

	e.logger.Info("execution started",
		zap.String("execution_id", exec.ID),
		zap.String("workflow_id", wf.ID),
		zap.Int("agents", len(wf.Agents)))

	session := vectorstore.NewSession(e.provisioner, e.logger)
	defer session.Close(context.WithoutCancel(ctx))

	agents := append([]types.AgentSpec(nil), wf.Agents...)
	sort.Slice(agents, func(i, j int) bool { return agents[i].Position < agents[j].Position })

	for _, spec := range agents {
		stepStart := time.Now()
		result, stepErr := e.agents.Run(ctx, spec, tool.Invocation{
			Inputs: userData,
			Prior:  exec.StepResults,
			Stores: session,
		})
		e.metrics.ObserveStep(spec.Tools, time.Since(stepStart), stepErr == nil)

		if stepErr != nil {
			exec.Status = types.ExecutionFailed
			exec.Error = &types.StepFailure{Position: spec.Position, Cause: stepErr.Error()}
			finished := e.now()
			exec.FinishedAt = &finished
			if err := e.save(ctx, exec); err != nil {
				return nil, err
			}

			e.metrics.ObserveExecution(string(types.ExecutionFailed), finished.Sub(exec.StartedAt))
			e.logger.Warn("execution failed",
				zap.String("execution_id", exec.ID),
				zap.Int("position", spec.Position),
				zap.Error(stepErr))
			return exec, nil
		}

		exec.StepResults = append(exec.StepResults, *result)
		if err := e.save(ctx, exec); err != nil {
			return nil, err
		}
	}

	exec.Status = types.ExecutionCompleted
	if n := len(exec.StepResults); n > 0 {
		exec.FinalOutput = exec.StepResults[n-1].Output
	}
	finished := e.now()
	exec.FinishedAt = &finished
	if err := e.save(ctx, exec); err != nil {
		return nil, err
	}

	e.metrics.ObserveExecution(string(types.ExecutionCompleted), finished.Sub(exec.StartedAt))
	e.logger.Info("execution completed",
		zap.String("execution_id", exec.ID),
		zap.Int("steps", len(exec.StepResults)),
		zap.Duration("duration", finished.Sub(exec.StartedAt)))
	return exec, nil
}

// Get returns an execution by ID.
func (e *Engine) Get(ctx context.Context, id string) (*types.Execution, error) {
	exec, err := e.executions.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, types.NewNotFound("execution", id)
	}
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, "failed to load execution").WithCause(err)
	}
	return exec, nil
}

func (e *Engine) loadWorkflow(ctx context.Context, id string) (*types.Workflow, error) {
	wf, err := e.workflows.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, types.NewNotFound("workflow", id)
	}
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, "failed to load workflow").WithCause(err)
	}
	return wf, nil
}

func (e *Engine) save(ctx context.Context, exec *types.Execution) error {
	if err := e.executions.Save(ctx, exec); err != nil {
		return types.NewError(types.ErrInternalError, "failed to persist execution").WithCause(err)
	}
	return nil
}
