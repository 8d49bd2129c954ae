package tool

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/floworc/floworc/types"
	"github.com/floworc/floworc/vectorstore"
)

// RAGBuilder provisions a vector store and indexes the documents from
// the execution's user data into it. Stateful: the provisioned store is
// visible to later steps through the session.
type RAGBuilder struct {
	logger *zap.Logger
}

// NewRAGBuilder creates the rag_builder tool.
func NewRAGBuilder(logger *zap.Logger) *RAGBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RAGBuilder{logger: logger.With(zap.String("tool", "rag_builder"))}
}

// Contract describes the tool to the planner.
func (t *RAGBuilder) Contract() types.ToolContract {
	return types.ToolContract{
		Name:        "rag_builder",
		Description: "Provisions a vector store and indexes the provided documents into it for later retrieval.",
		RequiredInputs: []types.ToolInput{
			{Name: "documents", Type: "list[string]", Description: "Texts to chunk, embed, and index", Required: true},
			{Name: "store_name", Type: "string", Description: "Name of the vector store", Required: false},
			{Name: "persistent", Type: "bool", Description: "Keep the store after the execution finishes", Required: false},
		},
		OutputShape: "Summary of the provisioned store and indexed chunk count",
		Stateful:    true,
	}
}

// Invoke provisions the store and indexes the documents.
func (t *RAGBuilder) Invoke(ctx context.Context, inv Invocation) (*Result, error) {
	if inv.Stores == nil {
		return nil, fmt.Errorf("no vector store session available")
	}

	documents, err := stringSliceInput(inv.Inputs, "documents")
	if err != nil {
		return nil, err
	}
	if len(documents) == 0 {
		return nil, fmt.Errorf("rag_builder requires a non-empty documents input")
	}

	name, ok := stringInput(inv.Inputs, "store_name")
	if !ok {
		name = "workflow_store"
	}

	handle, err := inv.Stores.Provision(ctx, vectorstore.ProvisionSpec{
		Name:       name,
		Persistent: boolInput(inv.Inputs, "persistent"),
	})
	if err != nil {
		return nil, fmt.Errorf("provision store: %w", err)
	}

	indexed, err := inv.Stores.Index(ctx, handle.StoreID, documents, map[string]any{
		"indexed_by": inv.AgentName,
	})
	if err != nil {
		return nil, fmt.Errorf("index documents: %w", err)
	}

	t.logger.Info("documents indexed",
		zap.String("store_id", handle.StoreID),
		zap.Int("documents", len(documents)),
		zap.Int("chunks", indexed))

	return &Result{
		Output: fmt.Sprintf("Indexed %d documents (%d chunks) into vector store %q (%s).",
			len(documents), indexed, name, handle.StoreID),
		SideEffects: []types.SideEffect{
			{Kind: types.SideEffectStoreProvisioned,
				Detail: fmt.Sprintf("store %s (%s, backend=%s, persistent=%t)",
					handle.StoreID, name, handle.Backend, handle.Persistent)},
			{Kind: types.SideEffectDocumentsIndexed,
				Detail: fmt.Sprintf("%d documents as %d chunks into %s",
					len(documents), indexed, handle.StoreID)},
		},
	}, nil
}
