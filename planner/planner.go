// Package planner is the boundary to the LLM planning client: given a
// task description and a data inventory it proposes an ordered list of
// agent specifications. The concrete model call is isolated behind
// ChatClient so everything around it stays deterministic and testable.
package planner

import "context"

// PlannedAgent is one candidate agent returned by the planning client,
// before tool resolution and position assignment.
type PlannedAgent struct {
	Name           string   `json:"name"`
	Role           string   `json:"role"`
	PromptTemplate string   `json:"prompt_template"`
	Tools          []string `json:"tools"`
}

// Planner proposes an ordered agent pipeline for a task. Implementations
// are expected to be non-deterministic; repeated calls with identical
// inputs may return different plans.
type Planner interface {
	Plan(ctx context.Context, taskDescription string, dataInventory map[string]any) ([]PlannedAgent, error)
}

// ChatRequest is a minimal chat completion request.
type ChatRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int

	// JSONOnly asks the model for a pure JSON object response.
	JSONOnly bool
}

// ChatClient is the minimal completion capability the orchestrator needs
// from an LLM provider.
type ChatClient interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}
