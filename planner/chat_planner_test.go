package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/floworc/floworc/types"
)

// scriptedChat returns canned responses in order.
type scriptedChat struct {
	responses []string
	err       error
	requests  []ChatRequest
}

func (s *scriptedChat) Complete(_ context.Context, req ChatRequest) (string, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func testCatalog() []types.ToolContract {
	return []types.ToolContract{
		{Name: "rag_builder", Description: "index documents", Stateful: true},
		{Name: "rag_chat", Description: "retrieve and answer", Stateful: true},
	}
}

func TestChatPlanner_Plan(t *testing.T) {
	chat := &scriptedChat{responses: []string{validPlan}}
	p := NewChatPlanner(chat, testCatalog(), zap.NewNop())

	agents, err := p.Plan(context.Background(), "Build a RAG system", map[string]any{"files": []string{"doc1.pdf"}})
	require.NoError(t, err)
	assert.Len(t, agents, 2)

	require.Len(t, chat.requests, 1)
	req := chat.requests[0]
	assert.True(t, req.JSONOnly)
	assert.Contains(t, req.System, "rag_builder")
	assert.Contains(t, req.User, "Build a RAG system")
}

func TestChatPlanner_EmptyTask(t *testing.T) {
	p := NewChatPlanner(&scriptedChat{}, testCatalog(), nil)
	_, err := p.Plan(context.Background(), "   ", nil)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrInvalidRequest))
}

func TestChatPlanner_ClientError(t *testing.T) {
	chat := &scriptedChat{err: errors.New("upstream down")}
	p := NewChatPlanner(chat, testCatalog(), nil)

	_, err := p.Plan(context.Background(), "task", nil)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrGeneration))
	assert.ErrorContains(t, err, "upstream down")
}

func TestChatPlanner_MalformedResponse(t *testing.T) {
	chat := &scriptedChat{responses: []string{"sure, here is a plan:"}}
	p := NewChatPlanner(chat, testCatalog(), nil)

	_, err := p.Plan(context.Background(), "task", nil)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrGeneration))
}
