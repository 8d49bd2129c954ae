// Package workflow implements the plan lifecycle: generation from a
// task description, the human approval gate, and read access. State
// transitions are monotonic; approved and rejected are terminal.
package workflow
