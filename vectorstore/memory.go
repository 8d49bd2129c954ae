package vectorstore

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// MemoryStore keeps documents in process memory. Suitable for ephemeral
// per-execution stores and for tests.
type MemoryStore struct {
	documents []Document
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewMemoryStore creates an in-memory vector store.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		documents: make([]Document, 0),
		logger:    logger.With(zap.String("component", "memory_vector_store")),
	}
}

// Add appends embedded documents to the store.
func (s *MemoryStore) Add(ctx context.Context, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		if doc.Embedding == nil {
			return fmt.Errorf("document %s has no embedding", doc.ID)
		}
		s.documents = append(s.documents, doc)
	}

	s.logger.Debug("documents added",
		zap.Int("count", len(docs)),
		zap.Int("total", len(s.documents)))
	return nil
}

// Search returns the topK most similar documents by cosine similarity.
func (s *MemoryStore) Search(ctx context.Context, queryEmbedding []float64, topK int) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.documents) == 0 {
		return []SearchResult{}, nil
	}

	results := make([]SearchResult, 0, len(s.documents))
	for _, doc := range s.documents {
		if doc.Embedding == nil {
			continue
		}
		results = append(results, SearchResult{
			Document: doc,
			Score:    cosineSimilarity(queryEmbedding, doc.Embedding),
		})
	}

	return topKOf(results, topK), nil
}

// Count returns the number of stored documents.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents), nil
}

// Clear removes all documents.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = make([]Document, 0)
	return nil
}
