package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floworc/floworc/types"
)

func TestRenderPrompt(t *testing.T) {
	userData := map[string]any{"topic": "go generics", "count": 3}
	prior := []types.StepResult{
		{AgentPosition: 0, Output: "first output"},
		{AgentPosition: 1, Output: "second output"},
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"user data", "Research {{user_data.topic}}", "Research go generics"},
		{"non-string user data", "Top {{user_data.count}} results", "Top 3 results"},
		{"step output", "Summarize: {{steps.0}}", "Summarize: first output"},
		{"multiple placeholders", "{{steps.0}} then {{steps.1}}", "first output then second output"},
		{"whitespace tolerated", "{{ user_data.topic }}", "go generics"},
		{"no placeholders", "plain text", "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderPrompt(tt.template, userData, prior)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderPrompt_Errors(t *testing.T) {
	prior := []types.StepResult{{AgentPosition: 0, Output: "out"}}

	tests := []struct {
		name     string
		template string
		contains string
	}{
		{"missing user data key", "{{user_data.absent}}", "no such key"},
		{"step not completed", "{{steps.5}}", "has not completed"},
		{"negative step", "{{steps.1}} and {{steps.2}}", "has not completed"},
		{"bad namespace", "{{config.secret}}", "unknown namespace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := renderPrompt(tt.template, map[string]any{}, prior)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}
