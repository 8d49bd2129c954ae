// Package engine runs approved workflows: agents execute strictly in
// position order, each step's result is persisted before the next step
// starts, and the first step failure ends the run with all prior
// results preserved.
package engine
