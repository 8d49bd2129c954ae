package planner

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/floworc/floworc/types"
)

const planSystemPrompt = `You are a workflow architect. Design a multi-agent pipeline for the user's task.

Agents run strictly in order; each agent sees the outputs of all previous agents. Assign each agent only tools from the catalog below.

TOOL CATALOG:
%s

Prompt templates may reference runtime values with placeholders:
- {{user_data.<key>}} for caller-supplied input
- {{steps.<n>}} for the output of the agent at position n

YOU MUST RETURN VALID JSON WITH THIS EXACT STRUCTURE:
{
  "workflow_name": "Clear workflow name",
  "description": "What this pipeline does",
  "agents": [
    {
      "name": "Agent Name",
      "role": "what this agent is responsible for",
      "prompt_template": "instruction text with optional placeholders",
      "tools": ["tool_name"]
    }
  ]
}

MANDATORY: at least 1 agent; every tools entry must come from the catalog.
RETURN ONLY VALID JSON. NO MARKDOWN. NO CODE BLOCKS.`

// BuildSystemPrompt renders the planning system prompt with the tool
// catalog so the model only selects tools that resolve at generation time.
func BuildSystemPrompt(catalog []types.ToolContract) string {
	sorted := append([]types.ToolContract(nil), catalog...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var b strings.Builder
	for _, c := range sorted {
		fmt.Fprintf(&b, "- %s: %s", c.Name, c.Description)
		if c.Stateful {
			b.WriteString(" (stateful)")
		}
		b.WriteString("\n")
	}
	return fmt.Sprintf(planSystemPrompt, strings.TrimRight(b.String(), "\n"))
}

// BuildUserPrompt renders the planning user prompt embedding the task and
// the data inventory.
func BuildUserPrompt(taskDescription string, dataInventory map[string]any) string {
	inventory := "No data available."
	if len(dataInventory) > 0 {
		if raw, err := json.MarshalIndent(dataInventory, "", "  "); err == nil {
			inventory = string(raw)
		}
	}
	return fmt.Sprintf("Task: %s\n\nAvailable data:\n%s\n\nDesign the complete pipeline. Return ONLY the JSON structure.",
		taskDescription, inventory)
}
