package store

import (
	"context"
	"errors"

	"github.com/floworc/floworc/types"
)

// ErrNotFound is returned when a record does not exist. Callers that
// need an API-facing error should translate it with types.NewNotFound.
var ErrNotFound = errors.New("record not found")

// WorkflowStore persists workflow definitions.
type WorkflowStore interface {
	Save(ctx context.Context, wf *types.Workflow) error
	Get(ctx context.Context, id string) (*types.Workflow, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*types.Workflow, error)
}

// ExecutionStore persists execution records.
type ExecutionStore interface {
	Save(ctx context.Context, exec *types.Execution) error
	Get(ctx context.Context, id string) (*types.Execution, error)
}
