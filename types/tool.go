package types

// ToolInput is one named, typed input a tool requires.
type ToolInput struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// ToolContract is a registry entry: the capability contract of a named
// tool. Contracts are fixed metadata, resolved at generation time; an
// unresolvable tool name is a generation-time validation failure.
type ToolContract struct {
	Name           string      `json:"name"`
	Description    string      `json:"description,omitempty"`
	RequiredInputs []ToolInput `json:"required_inputs,omitempty"`
	OutputShape    string      `json:"output_shape"`

	// Stateful marks tools that depend on provisioned state (for example
	// a retrieval tool that needs a vector store created earlier in the
	// run) as opposed to stateless calls like code execution.
	Stateful bool `json:"stateful"`
}
