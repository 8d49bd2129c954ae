package planner

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/floworc/floworc/types"
)

// ChatPlanner implements Planner on top of a ChatClient. It embeds the
// tool catalog into the system prompt and strictly parses the response.
type ChatPlanner struct {
	client      ChatClient
	catalog     []types.ToolContract
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// ChatPlannerOption customizes a ChatPlanner.
type ChatPlannerOption func(*ChatPlanner)

// WithTemperature overrides the planning temperature.
func WithTemperature(t float32) ChatPlannerOption {
	return func(p *ChatPlanner) { p.temperature = t }
}

// WithMaxTokens overrides the completion token budget.
func WithMaxTokens(n int) ChatPlannerOption {
	return func(p *ChatPlanner) { p.maxTokens = n }
}

// NewChatPlanner creates a planner over the given chat client and tool
// catalog. The catalog is fixed at construction; the registry is
// process-wide read-only state.
func NewChatPlanner(client ChatClient, catalog []types.ToolContract, logger *zap.Logger, opts ...ChatPlannerOption) *ChatPlanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &ChatPlanner{
		client:      client,
		catalog:     append([]types.ToolContract(nil), catalog...),
		temperature: 0.7,
		maxTokens:   4096,
		logger:      logger.With(zap.String("component", "planner")),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan asks the model for a pipeline and validates the structure.
func (p *ChatPlanner) Plan(ctx context.Context, taskDescription string, dataInventory map[string]any) ([]PlannedAgent, error) {
	if strings.TrimSpace(taskDescription) == "" {
		return nil, types.NewError(types.ErrInvalidRequest, "task description is empty")
	}

	start := time.Now()
	raw, err := p.client.Complete(ctx, ChatRequest{
		System:      BuildSystemPrompt(p.catalog),
		User:        BuildUserPrompt(taskDescription, dataInventory),
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		JSONOnly:    true,
	})
	if err != nil {
		return nil, types.NewGenerationError("planning call failed").WithCause(err)
	}

	agents, err := ParsePlan(raw)
	if err != nil {
		p.logger.Warn("plan rejected",
			zap.Error(err),
			zap.Int("response_length", len(raw)))
		return nil, err
	}

	p.logger.Info("plan produced",
		zap.Int("agents", len(agents)),
		zap.Duration("duration", time.Since(start)))
	return agents, nil
}
