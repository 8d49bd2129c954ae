package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/floworc/floworc/planner"
	"github.com/floworc/floworc/tool"
	"github.com/floworc/floworc/types"
)

// AgentExecutor runs one agent spec: it renders the prompt, invokes the
// agent's declared tools in order, and collects the step result.
type AgentExecutor struct {
	registry *tool.Registry
	chat     planner.ChatClient
	logger   *zap.Logger
}

// NewAgentExecutor creates an agent executor. chat serves agents with
// no declared tools; it may be nil, in which case such agents fail.
func NewAgentExecutor(registry *tool.Registry, chat planner.ChatClient, logger *zap.Logger) *AgentExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgentExecutor{
		registry: registry,
		chat:     chat,
		logger:   logger.With(zap.String("component", "agent_executor")),
	}
}

// Run executes one agent and returns its step result. The returned
// error is always a step-level failure, never an infrastructure fault.
func (a *AgentExecutor) Run(ctx context.Context, spec types.AgentSpec, inv tool.Invocation) (*types.StepResult, error) {
	start := time.Now()

	prompt, err := renderPrompt(spec.PromptTemplate, inv.Inputs, inv.Prior)
	if err != nil {
		return nil, types.NewError(types.ErrStepFailed,
			fmt.Sprintf("agent %s: %v", spec.Name, err))
	}
	inv.AgentName = spec.Name
	inv.AgentRole = spec.Role
	inv.Prompt = prompt

	var (
		output      string
		sideEffects []types.SideEffect
	)

	if len(spec.Tools) == 0 {
		output, err = a.plainChat(ctx, spec, prompt)
		if err != nil {
			return nil, err
		}
	} else {
		for _, toolName := range spec.Tools {
			t, err := a.registry.Resolve(toolName)
			if err != nil {
				return nil, types.NewError(types.ErrStepFailed,
					fmt.Sprintf("agent %s: tool %s is not registered", spec.Name, toolName)).WithCause(err)
			}

			res, err := t.Invoke(ctx, inv)
			if err != nil {
				return nil, types.NewError(types.ErrStepFailed,
					fmt.Sprintf("agent %s: tool %s failed", spec.Name, toolName)).WithCause(err)
			}
			output = res.Output
			sideEffects = append(sideEffects, res.SideEffects...)
		}
	}

	a.logger.Info("agent completed",
		zap.String("agent", spec.Name),
		zap.Int("position", spec.Position),
		zap.Duration("duration", time.Since(start)))

	return &types.StepResult{
		AgentPosition: spec.Position,
		Output:        output,
		SideEffects:   sideEffects,
		Duration:      time.Since(start),
		CompletedAt:   time.Now().UTC(),
	}, nil
}

// plainChat serves agents that declared no tools: the rendered prompt
// goes straight to the chat model with the role as system prompt.
func (a *AgentExecutor) plainChat(ctx context.Context, spec types.AgentSpec, prompt string) (string, error) {
	if a.chat == nil {
		return "", types.NewError(types.ErrStepFailed,
			fmt.Sprintf("agent %s has no tools and no chat client is configured", spec.Name))
	}
	output, err := a.chat.Complete(ctx, planner.ChatRequest{
		System: spec.Role,
		User:   prompt,
	})
	if err != nil {
		return "", types.NewError(types.ErrStepFailed,
			fmt.Sprintf("agent %s: chat completion failed", spec.Name)).WithCause(err)
	}
	return output, nil
}
