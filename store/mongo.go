package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/floworc/floworc/types"
)

// MongoWorkflowStore persists workflows in the "workflows" collection.
type MongoWorkflowStore struct {
	collection *mongo.Collection
}

// NewMongoWorkflowStore creates a workflow store over the database.
func NewMongoWorkflowStore(db *mongo.Database) *MongoWorkflowStore {
	return &MongoWorkflowStore{collection: db.Collection("workflows")}
}

// Save upserts the workflow by ID.
func (s *MongoWorkflowStore) Save(ctx context.Context, wf *types.Workflow) error {
	_, err := s.collection.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: wf.ID}},
		wf,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save workflow %s: %w", wf.ID, err)
	}
	return nil
}

// Get loads a workflow by ID.
func (s *MongoWorkflowStore) Get(ctx context.Context, id string) (*types.Workflow, error) {
	var wf types.Workflow
	err := s.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&wf)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow %s: %w", id, err)
	}
	return &wf, nil
}

// ListByOwner returns the owner's workflows, newest first.
func (s *MongoWorkflowStore) ListByOwner(ctx context.Context, ownerID string) ([]*types.Workflow, error) {
	cursor, err := s.collection.Find(ctx,
		bson.D{{Key: "owner_id", Value: ownerID}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list workflows for %s: %w", ownerID, err)
	}

	var workflows []*types.Workflow
	if err := cursor.All(ctx, &workflows); err != nil {
		return nil, fmt.Errorf("decode workflows: %w", err)
	}
	if workflows == nil {
		workflows = []*types.Workflow{}
	}
	return workflows, nil
}

// MongoExecutionStore persists executions in the "executions" collection.
type MongoExecutionStore struct {
	collection *mongo.Collection
}

// NewMongoExecutionStore creates an execution store over the database.
func NewMongoExecutionStore(db *mongo.Database) *MongoExecutionStore {
	return &MongoExecutionStore{collection: db.Collection("executions")}
}

// Save upserts the execution by ID.
func (s *MongoExecutionStore) Save(ctx context.Context, exec *types.Execution) error {
	_, err := s.collection.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: exec.ID}},
		exec,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save execution %s: %w", exec.ID, err)
	}
	return nil
}

// Get loads an execution by ID.
func (s *MongoExecutionStore) Get(ctx context.Context, id string) (*types.Execution, error) {
	var exec types.Execution
	err := s.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&exec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get execution %s: %w", id, err)
	}
	return &exec, nil
}
