package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/floworc/floworc/types"
)

// planEnvelope mirrors the JSON structure the planning prompt demands.
type planEnvelope struct {
	WorkflowName string         `json:"workflow_name"`
	Description  string         `json:"description"`
	Agents       []PlannedAgent `json:"agents"`
}

// ParsePlan parses and validates the raw model response into an ordered
// agent list. Any structural problem is a GENERATION_FAILED error; a
// partial plan is never returned.
func ParsePlan(raw string) ([]PlannedAgent, error) {
	cleaned := stripCodeFence(strings.TrimSpace(raw))
	if cleaned == "" {
		return nil, types.NewGenerationError("planner returned an empty response")
	}

	var env planEnvelope
	dec := json.NewDecoder(strings.NewReader(cleaned))
	if err := dec.Decode(&env); err != nil {
		return nil, types.NewGenerationError("planner returned malformed JSON").WithCause(err)
	}

	if len(env.Agents) == 0 {
		return nil, types.NewGenerationError("plan contains zero agents")
	}

	for i, a := range env.Agents {
		if strings.TrimSpace(a.Name) == "" {
			return nil, types.NewGenerationError(fmt.Sprintf("agent %d has no name", i))
		}
		if strings.TrimSpace(a.PromptTemplate) == "" {
			return nil, types.NewGenerationError(fmt.Sprintf("agent %d (%s) has no prompt template", i, a.Name))
		}
		for _, tool := range a.Tools {
			if strings.TrimSpace(tool) == "" {
				return nil, types.NewGenerationError(fmt.Sprintf("agent %d (%s) declares an empty tool name", i, a.Name))
			}
		}
	}
	return env.Agents, nil
}

// stripCodeFence tolerates models that wrap JSON in a markdown fence
// despite the instruction not to.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
