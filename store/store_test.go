package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floworc/floworc/config"
	"github.com/floworc/floworc/types"
)

func sampleWorkflow(owner string, createdAt time.Time) *types.Workflow {
	return &types.Workflow{
		ID:              types.NewID("wf"),
		TaskDescription: "summarize the quarterly report",
		DataInventory:   map[string]any{"report": "q3.pdf"},
		Agents: []types.AgentSpec{
			{Name: "summarizer", Role: "You summarize documents.", PromptTemplate: "Summarize {{user_data.report}}", Tools: []string{"llm_chat"}, Position: 0},
		},
		Status:    types.WorkflowGenerated,
		OwnerID:   owner,
		CreatedAt: createdAt,
	}
}

func sampleExecution(workflowID string) *types.Execution {
	return &types.Execution{
		ID:         types.NewID("exec"),
		WorkflowID: workflowID,
		UserData:   map[string]any{"report": "q3.pdf"},
		Status:     types.ExecutionRunning,
		StartedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
}

func testWorkflowStore(t *testing.T, s WorkflowStore) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	older := sampleWorkflow("user_1", now.Add(-time.Hour))
	newer := sampleWorkflow("user_1", now)
	other := sampleWorkflow("user_2", now)

	for _, wf := range []*types.Workflow{older, newer, other} {
		require.NoError(t, s.Save(ctx, wf))
	}

	got, err := s.Get(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID)
	assert.Equal(t, older.TaskDescription, got.TaskDescription)
	assert.Len(t, got.Agents, 1)
	assert.Equal(t, "llm_chat", got.Agents[0].Tools[0])

	_, err = s.Get(ctx, "wf_missing")
	assert.ErrorIs(t, err, ErrNotFound)

	// Save is an upsert.
	older.Status = types.WorkflowApproved
	approvedAt := now
	older.ApprovedAt = &approvedAt
	require.NoError(t, s.Save(ctx, older))
	got, err = s.Get(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, types.WorkflowApproved, got.Status)
	require.NotNil(t, got.ApprovedAt)

	list, err := s.ListByOwner(ctx, "user_1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)

	empty, err := s.ListByOwner(ctx, "user_unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testExecutionStore(t *testing.T, s ExecutionStore) {
	ctx := context.Background()
	exec := sampleExecution("wf_123")
	require.NoError(t, s.Save(ctx, exec))

	got, err := s.Get(ctx, exec.ID)
	require.NoError(t, err)
	assert.Equal(t, exec.WorkflowID, got.WorkflowID)
	assert.Equal(t, types.ExecutionRunning, got.Status)

	// Per-step saves overwrite the record in place.
	exec.StepResults = append(exec.StepResults, types.StepResult{
		AgentPosition: 0,
		Output:        "step output",
		CompletedAt:   time.Now().UTC().Truncate(time.Millisecond),
	})
	exec.Status = types.ExecutionCompleted
	exec.FinalOutput = "step output"
	finished := time.Now().UTC().Truncate(time.Millisecond)
	exec.FinishedAt = &finished
	require.NoError(t, s.Save(ctx, exec))

	got, err = s.Get(ctx, exec.ID)
	require.NoError(t, err)
	require.Len(t, got.StepResults, 1)
	assert.Equal(t, "step output", got.StepResults[0].Output)
	assert.Equal(t, types.ExecutionCompleted, got.Status)
	require.NotNil(t, got.FinishedAt)

	_, err = s.Get(ctx, "exec_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStores(t *testing.T) {
	testWorkflowStore(t, NewMemoryWorkflowStore())
	testExecutionStore(t, NewMemoryExecutionStore())
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryWorkflowStore()
	wf := sampleWorkflow("user_1", time.Now())
	require.NoError(t, s.Save(ctx, wf))

	// Mutating the saved or loaded value must not leak into the store.
	wf.TaskDescription = "changed outside"
	got, err := s.Get(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, "summarize the quarterly report", got.TaskDescription)

	got.Agents[0].Name = "mutated"
	again, err := s.Get(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, "summarizer", again.Agents[0].Name)
}

func TestSQLiteStores(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	testWorkflowStore(t, NewSQLiteWorkflowStore(db))
	testExecutionStore(t, NewSQLiteExecutionStore(db))
}

func TestRedisExecutionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	testExecutionStore(t, NewRedisExecutionStore(client, "floworc_test"))
}

func TestOpen_Memory(t *testing.T) {
	stores, err := Open(context.Background(), config.StoreConfig{Backend: "memory"}, nil)
	require.NoError(t, err)
	defer stores.Close(context.Background())

	assert.IsType(t, &MemoryWorkflowStore{}, stores.Workflows)
	assert.IsType(t, &MemoryExecutionStore{}, stores.Executions)
}

func TestOpen_RedisExecutions(t *testing.T) {
	mr := miniredis.RunT(t)
	stores, err := Open(context.Background(), config.StoreConfig{
		Backend:          "memory",
		ExecutionBackend: "redis",
		Redis:            config.RedisConfig{Addr: mr.Addr()},
	}, nil)
	require.NoError(t, err)
	defer stores.Close(context.Background())

	assert.IsType(t, &RedisExecutionStore{}, stores.Executions)
	testExecutionStore(t, stores.Executions)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Backend: "cassandra"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store backend")
}
