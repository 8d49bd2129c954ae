package vectorstore

import (
	"context"
	"math"
	"sort"
)

// Document is one embedded chunk of source content.
type Document struct {
	ID        string         `json:"id" bson:"_id"`
	Content   string         `json:"content" bson:"content"`
	Metadata  map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Embedding []float64      `json:"embedding,omitempty" bson:"embedding,omitempty"`
}

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// Store is a minimal vector store: add embedded documents, search by
// query embedding, count, and clear.
type Store interface {
	Add(ctx context.Context, docs []Document) error
	Search(ctx context.Context, queryEmbedding []float64, topK int) ([]SearchResult, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

func sortByScore(results []SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

func topKOf(results []SearchResult, topK int) []SearchResult {
	sortByScore(results)
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK]
}
