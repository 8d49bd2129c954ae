// Package handlers implements the HTTP API: workflow generation and
// approval, execution, and health probes. Responses share a single
// envelope; error codes map to HTTP status through one table.
package handlers
