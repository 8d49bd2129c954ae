// Package tool defines the builtin tools agents can invoke during
// workflow execution and the registry that resolves them by name.
// Every tool publishes a contract describing its inputs so the planner
// can assemble workflows from the catalog.
package tool
