package tool

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/floworc/floworc/planner"
	"github.com/floworc/floworc/types"
	"github.com/floworc/floworc/vectorstore"
)

// RAGChat retrieves the most relevant chunks for the agent's prompt and
// synthesizes an answer with the chat model. Stateful: it reads from
// stores provisioned earlier in the same execution.
type RAGChat struct {
	chat   planner.ChatClient
	topK   int
	logger *zap.Logger
}

// NewRAGChat creates the rag_chat tool. chat may be nil, in which case
// the tool returns the raw retrieved context without synthesis.
func NewRAGChat(chat planner.ChatClient, topK int, logger *zap.Logger) *RAGChat {
	if logger == nil {
		logger = zap.NewNop()
	}
	if topK <= 0 {
		topK = 5
	}
	return &RAGChat{
		chat:   chat,
		topK:   topK,
		logger: logger.With(zap.String("tool", "rag_chat")),
	}
}

// Contract describes the tool to the planner.
func (t *RAGChat) Contract() types.ToolContract {
	return types.ToolContract{
		Name:        "rag_chat",
		Description: "Retrieves the most relevant indexed chunks for the prompt and answers using them as context. Requires a store built earlier in the workflow.",
		RequiredInputs: []types.ToolInput{
			{Name: "store_name", Type: "string", Description: "Vector store to query; defaults to the most recently provisioned", Required: false},
		},
		OutputShape: "Answer grounded in the retrieved chunks",
		Stateful:    true,
	}
}

// Invoke retrieves context and answers the prompt.
func (t *RAGChat) Invoke(ctx context.Context, inv Invocation) (*Result, error) {
	if inv.Stores == nil {
		return nil, fmt.Errorf("no vector store session available")
	}

	storeID := inv.Stores.Latest()
	if name, ok := stringInput(inv.Inputs, "store_name"); ok {
		id, found := inv.Stores.Find(name)
		if !found {
			return nil, fmt.Errorf("no store named %q has been provisioned in this execution", name)
		}
		storeID = id
	}
	if storeID == "" {
		return nil, fmt.Errorf("no vector store has been provisioned in this execution")
	}

	results, err := inv.Stores.Query(ctx, storeID, inv.Prompt, t.topK)
	if err != nil {
		return nil, fmt.Errorf("query store: %w", err)
	}

	t.logger.Debug("chunks retrieved",
		zap.String("store_id", storeID),
		zap.Int("count", len(results)))

	retrieved := formatRetrieved(results)
	if t.chat == nil {
		return &Result{Output: retrieved}, nil
	}

	answer, err := t.chat.Complete(ctx, planner.ChatRequest{
		System: "Answer the user's question using only the provided context. " +
			"If the context does not contain the answer, say so.",
		User: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", retrieved, inv.Prompt),
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize answer: %w", err)
	}
	return &Result{Output: answer}, nil
}

func formatRetrieved(results []vectorstore.SearchResult) string {
	if len(results) == 0 {
		return "No relevant documents found."
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] (score %.3f) %s\n", i+1, r.Score, r.Document.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}
