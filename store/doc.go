// Package store persists workflows and executions. Both record types
// are written whole on every save: workflows are small and executions
// are saved after each step so readers can observe partial progress.
//
// Backends: in-memory (default), MongoDB, SQLite through GORM, and
// Redis for executions.
package store
