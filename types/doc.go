// Package types defines the shared data model of the floworc orchestrator:
// workflows and their agent specifications, execution records, tool
// contracts, and the structured error type used across package boundaries.
//
// Types here carry both json and bson tags so the same structs travel
// through the HTTP layer and the document stores without mapping layers.
package types
