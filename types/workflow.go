package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// WorkflowStatus is the approval state of a workflow plan.
// Transitions are monotonic: generated -> approved or generated -> rejected,
// nothing else. Approved and rejected are terminal.
type WorkflowStatus string

const (
	WorkflowGenerated WorkflowStatus = "generated"
	WorkflowApproved  WorkflowStatus = "approved"
	WorkflowRejected  WorkflowStatus = "rejected"
)

// AgentSpec is one step of a workflow plan: a role, the instruction
// template the agent will run with, and the tools it declared.
type AgentSpec struct {
	Name           string   `json:"name" bson:"name"`
	Role           string   `json:"role" bson:"role"`
	PromptTemplate string   `json:"prompt_template" bson:"prompt_template"`
	Tools          []string `json:"tools" bson:"tools"`

	// Position is the agent's index in the execution order. The sequence
	// defines a strict total order; there is no branching or fan-out.
	Position int `json:"position" bson:"position"`
}

// Workflow is a stored plan of ordered agent specifications produced from
// a task description. TaskDescription, DataInventory and Agents are
// immutable once the workflow leaves the generated state.
type Workflow struct {
	ID              string         `json:"id" bson:"_id"`
	TaskDescription string         `json:"task_description" bson:"task_description"`
	DataInventory   map[string]any `json:"data_inventory" bson:"data_inventory"`
	Agents          []AgentSpec    `json:"agents" bson:"agents"`
	Status          WorkflowStatus `json:"status" bson:"status"`
	OwnerID         string         `json:"owner_id" bson:"owner_id"`
	CreatedAt       time.Time      `json:"created_at" bson:"created_at"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty" bson:"approved_at,omitempty"`
}

// Clone returns a deep copy. Stores hand out clones so callers cannot
// mutate persisted state through shared slices and maps.
func (w *Workflow) Clone() *Workflow {
	if w == nil {
		return nil
	}
	c := *w
	c.Agents = make([]AgentSpec, len(w.Agents))
	for i, a := range w.Agents {
		c.Agents[i] = a
		c.Agents[i].Tools = append([]string(nil), a.Tools...)
	}
	c.DataInventory = cloneAnyMap(w.DataInventory)
	if w.ApprovedAt != nil {
		t := *w.ApprovedAt
		c.ApprovedAt = &t
	}
	return &c
}

// NewID returns a prefixed opaque identifier, e.g. "wf_1b9d6bcd4f1a".
func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func cloneAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
