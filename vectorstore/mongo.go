package vectorstore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
)

// MongoStore persists documents in a MongoDB collection. Similarity
// search loads candidates and scores them in process, which keeps the
// store free of any Atlas-specific index requirements.
type MongoStore struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoStore creates a vector store over the given collection.
func NewMongoStore(collection *mongo.Collection, logger *zap.Logger) *MongoStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoStore{
		collection: collection,
		logger:     logger.With(zap.String("component", "mongo_vector_store")),
	}
}

// Add inserts embedded documents into the collection.
func (s *MongoStore) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	models := make([]any, 0, len(docs))
	for _, doc := range docs {
		if doc.Embedding == nil {
			return fmt.Errorf("document %s has no embedding", doc.ID)
		}
		models = append(models, doc)
	}

	if _, err := s.collection.InsertMany(ctx, models); err != nil {
		return fmt.Errorf("insert documents: %w", err)
	}

	s.logger.Debug("documents added", zap.Int("count", len(docs)))
	return nil
}

// Search scores every stored document against the query embedding and
// returns the topK best matches.
func (s *MongoStore) Search(ctx context.Context, queryEmbedding []float64, topK int) ([]SearchResult, error) {
	cursor, err := s.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}

	var docs []Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}

	results := make([]SearchResult, 0, len(docs))
	for _, doc := range docs {
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
func (s *MongoStore) Count(ctx context.Context) (int, error) {
	n, err := s.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return int(n), nil
}

// Clear drops all documents from the collection.
func (s *MongoStore) Clear(ctx context.Context) error {
	if _, err := s.collection.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	return nil
}
