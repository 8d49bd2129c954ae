// Package vectorstore provides embedding-backed document stores for
// retrieval steps. Stores are provisioned per workflow execution through
// a Session; persistent stores survive the execution and are reused by
// name, ephemeral ones are released when the session closes.
package vectorstore
