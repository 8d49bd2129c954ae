package workflow

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/floworc/floworc/store"
	"github.com/floworc/floworc/types"
)

// Lifecycle owns the approval state machine and read access.
type Lifecycle struct {
	store  store.WorkflowStore
	logger *zap.Logger
	now    func() time.Time
}

// NewLifecycle creates the lifecycle service.
func NewLifecycle(ws store.WorkflowStore, logger *zap.Logger) *Lifecycle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lifecycle{
		store:  ws,
		logger: logger.With(zap.String("component", "lifecycle")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Get returns a workflow by ID.
func (l *Lifecycle) Get(ctx context.Context, id string) (*types.Workflow, error) {
	return l.load(ctx, id)
}

// List returns all workflows owned by ownerID, newest first.
func (l *Lifecycle) List(ctx context.Context, ownerID string) ([]*types.Workflow, error) {
	if ownerID == "" {
		return nil, types.NewError(types.ErrInvalidRequest, "owner id is required")
	}
	workflows, err := l.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, "failed to list workflows").WithCause(err)
	}
	return workflows, nil
}

// Approve moves a generated workflow to approved. Only the generated
// state accepts the transition; approving twice is an error.
func (l *Lifecycle) Approve(ctx context.Context, id string) (*types.Workflow, error) {
	return l.transition(ctx, id, "approve", types.WorkflowApproved)
}

// Reject moves a generated workflow to rejected. Rejected is terminal:
// the plan can never be approved or executed afterwards.
func (l *Lifecycle) Reject(ctx context.Context, id string) (*types.Workflow, error) {
	return l.transition(ctx, id, "reject", types.WorkflowRejected)
}

func (l *Lifecycle) transition(ctx context.Context, id, verb string, target types.WorkflowStatus) (*types.Workflow, error) {
	wf, err := l.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if wf.Status != types.WorkflowGenerated {
		return nil, types.NewInvalidState(verb+" workflow", string(wf.Status))
	}

	wf.Status = target
	if target == types.WorkflowApproved {
		approvedAt := l.now()
		wf.ApprovedAt = &approvedAt
	}

	if err := l.store.Save(ctx, wf); err != nil {
		return nil, types.NewError(types.ErrInternalError, "failed to persist workflow").WithCause(err)
	}

	l.logger.Info("workflow transitioned",
		zap.String("workflow_id", id),
		zap.String("status", string(target)))
	return wf, nil
}

func (l *Lifecycle) load(ctx context.Context, id string) (*types.Workflow, error) {
	wf, err := l.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, types.NewNotFound("workflow", id)
	}
	if err != nil {
		return nil, types.NewError(types.ErrInternalError, "failed to load workflow").WithCause(err)
	}
	return wf, nil
}
