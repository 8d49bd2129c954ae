package types

import "time"

// ExecutionStatus is the runtime state of one workflow run.
// Completed and failed are terminal.
type ExecutionStatus string

const (
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
)

// SideEffectKind classifies the side effects a step produced.
type SideEffectKind string

const (
	SideEffectStoreProvisioned SideEffectKind = "store_provisioned"
	SideEffectDocumentsIndexed SideEffectKind = "documents_indexed"
	SideEffectCodeRun          SideEffectKind = "code_run"
	SideEffectWebSearch        SideEffectKind = "web_search"
)

// SideEffect records one externally visible action taken by a tool.
type SideEffect struct {
	Kind   SideEffectKind `json:"kind" bson:"kind"`
	Detail string         `json:"detail" bson:"detail"`
}

// StepResult is the outcome of one agent. AgentPosition always equals the
// index of the step in Execution.StepResults.
type StepResult struct {
	AgentPosition int           `json:"agent_position" bson:"agent_position"`
	Output        string        `json:"output" bson:"output"`
	SideEffects   []SideEffect  `json:"side_effects,omitempty" bson:"side_effects,omitempty"`
	Duration      time.Duration `json:"duration" bson:"duration"`
	CompletedAt   time.Time     `json:"completed_at" bson:"completed_at"`
}

// StepFailure captures which step failed and why.
type StepFailure struct {
	Position int    `json:"position" bson:"position"`
	Cause    string `json:"cause" bson:"cause"`
}

// Execution is one concrete run of an approved workflow against
// user-supplied input. StepResults is append-only, strictly ordered by
// position; readers observing an in-progress execution see a prefix of
// the final sequence.
type Execution struct {
	ID          string          `json:"id" bson:"_id"`
	WorkflowID  string          `json:"workflow_id" bson:"workflow_id"`
	UserData    map[string]any  `json:"user_data" bson:"user_data"`
	StepResults []StepResult    `json:"step_results" bson:"step_results"`
	Status      ExecutionStatus `json:"status" bson:"status"`

	// FinalOutput is populated only on completed; Error only on failed.
	FinalOutput string       `json:"final_output,omitempty" bson:"final_output,omitempty"`
	Error       *StepFailure `json:"error,omitempty" bson:"error,omitempty"`

	StartedAt  time.Time  `json:"started_at" bson:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" bson:"finished_at,omitempty"`
}

// Clone returns a deep copy.
func (e *Execution) Clone() *Execution {
	if e == nil {
		return nil
	}
	c := *e
	c.UserData = cloneAnyMap(e.UserData)
	c.StepResults = make([]StepResult, len(e.StepResults))
	for i, r := range e.StepResults {
		c.StepResults[i] = r
		c.StepResults[i].SideEffects = append([]SideEffect(nil), r.SideEffects...)
	}
	if e.Error != nil {
		f := *e.Error
		c.Error = &f
	}
	if e.FinishedAt != nil {
		t := *e.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}

// Terminal reports whether the execution reached a final status.
func (e *Execution) Terminal() bool {
	return e.Status == ExecutionCompleted || e.Status == ExecutionFailed
}
