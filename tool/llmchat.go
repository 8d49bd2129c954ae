package tool

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/floworc/floworc/planner"
	"github.com/floworc/floworc/types"
)

// LLMChat completes the rendered prompt with the chat model. The agent's
// role becomes the system prompt.
type LLMChat struct {
	chat   planner.ChatClient
	logger *zap.Logger
}

// NewLLMChat creates the llm_chat tool.
func NewLLMChat(chat planner.ChatClient, logger *zap.Logger) *LLMChat {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMChat{chat: chat, logger: logger.With(zap.String("tool", "llm_chat"))}
}

// Contract describes the tool to the planner.
func (t *LLMChat) Contract() types.ToolContract {
	return types.ToolContract{
		Name:        "llm_chat",
		Description: "Sends the prompt to the chat model and returns the completion. Use for analysis, summarization, and free-form text tasks.",
		OutputShape: "Model completion text",
	}
}

// Invoke completes the prompt.
func (t *LLMChat) Invoke(ctx context.Context, inv Invocation) (*Result, error) {
	if t.chat == nil {
		return nil, fmt.Errorf("chat client not configured")
	}
	prompt := strings.TrimSpace(inv.Prompt)
	if prompt == "" {
		return nil, fmt.Errorf("prompt is empty")
	}

	system := inv.AgentRole
	if system == "" {
		system = "You are a helpful assistant."
	}

	output, err := t.chat.Complete(ctx, planner.ChatRequest{System: system, User: prompt})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	t.logger.Debug("completion produced",
		zap.String("agent", inv.AgentName),
		zap.Int("output_length", len(output)))
	return &Result{Output: output}, nil
}
