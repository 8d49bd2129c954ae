package store

import (
	"context"
	"sort"
	"sync"

	"github.com/floworc/floworc/types"
)

// MemoryWorkflowStore keeps workflows in process memory.
type MemoryWorkflowStore struct {
	mu        sync.RWMutex
	workflows map[string]*types.Workflow
}

// NewMemoryWorkflowStore creates an in-memory workflow store.
func NewMemoryWorkflowStore() *MemoryWorkflowStore {
	return &MemoryWorkflowStore{workflows: make(map[string]*types.Workflow)}
}

// Save stores a deep copy of the workflow.
func (s *MemoryWorkflowStore) Save(_ context.Context, wf *types.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[wf.ID] = wf.Clone()
	return nil
}

// Get returns a deep copy of the workflow or ErrNotFound.
func (s *MemoryWorkflowStore) Get(_ context.Context, id string) (*types.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wf, ok := s.workflows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return wf.Clone(), nil
}

// ListByOwner returns the owner's workflows, newest first.
func (s *MemoryWorkflowStore) ListByOwner(_ context.Context, ownerID string) ([]*types.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Workflow, 0)
	for _, wf := range s.workflows {
		if wf.OwnerID == ownerID {
			out = append(out, wf.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// MemoryExecutionStore keeps executions in process memory.
type MemoryExecutionStore struct {
	mu         sync.RWMutex
	executions map[string]*types.Execution
}

// NewMemoryExecutionStore creates an in-memory execution store.
func NewMemoryExecutionStore() *MemoryExecutionStore {
	return &MemoryExecutionStore{executions: make(map[string]*types.Execution)}
}

// Save stores a deep copy of the execution.
func (s *MemoryExecutionStore) Save(_ context.Context, exec *types.Execution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executions[exec.ID] = exec.Clone()
	return nil
}

// Get returns a deep copy of the execution or ErrNotFound.
func (s *MemoryExecutionStore) Get(_ context.Context, id string) (*types.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exec, ok := s.executions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return exec.Clone(), nil
}
