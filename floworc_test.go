package floworc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floworc/floworc/planner"
	"github.com/floworc/floworc/types"
)

// planThenAnswer returns a plan on the first call and plain text after.
type planThenAnswer struct {
	calls int
}

func (c *planThenAnswer) Complete(ctx context.Context, req planner.ChatRequest) (string, error) {
	c.calls++
	if req.JSONOnly {
		return `{
			"workflow_name": "summarize",
			"agents": [
				{"name": "summarizer", "role": "Summarizer",
				 "prompt_template": "Summarize: {{user_data.text}}", "tools": []}
			]
		}`, nil
	}
	return "a short summary", nil
}

func TestNew_RequiresChatClient(t *testing.T) {
	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat client is required")
}

func TestNew_EndToEnd(t *testing.T) {
	sys, err := New(WithChatClient(&planThenAnswer{}))
	require.NoError(t, err)

	ctx := context.Background()
	wf, err := sys.Generator.Generate(ctx, "summarize the provided text", nil, "user_1")
	require.NoError(t, err)
	assert.Equal(t, types.WorkflowGenerated, wf.Status)
	require.Len(t, wf.Agents, 1)

	wf, err = sys.Lifecycle.Approve(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, types.WorkflowApproved, wf.Status)

	exec, err := sys.Engine.Execute(ctx, wf.ID, map[string]any{"text": "hello world"})
	require.NoError(t, err)
	assert.Equal(t, types.ExecutionCompleted, exec.Status)
	assert.Equal(t, "a short summary", exec.FinalOutput)

	got, err := sys.Engine.Get(ctx, exec.ID)
	require.NoError(t, err)
	assert.Equal(t, exec.ID, got.ID)
}

func TestNew_RegistersBuiltinTools(t *testing.T) {
	sys, err := New(WithChatClient(&planThenAnswer{}))
	require.NoError(t, err)

	var names []string
	for _, c := range sys.Registry.Contracts() {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "llm_chat")
	assert.Contains(t, names, "rag_builder")
	assert.Contains(t, names, "rag_chat")
	assert.Contains(t, names, "report_generator")
	assert.Contains(t, names, "web_search")
	assert.NotContains(t, names, "code_executor", "no sandbox configured")
}
