package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/floworc/floworc/types"
)

// Records hold the full document as JSON next to the columns we filter
// and sort on. Schema changes on the payload never require migrations.

type workflowRecord struct {
	ID        string    `gorm:"primaryKey;column:id"`
	OwnerID   string    `gorm:"index;column:owner_id"`
	Status    string    `gorm:"column:status"`
	CreatedAt time.Time `gorm:"column:created_at"`
	Payload   []byte    `gorm:"column:payload"`
}

func (workflowRecord) TableName() string { return "workflows" }

type executionRecord struct {
	ID         string    `gorm:"primaryKey;column:id"`
	WorkflowID string    `gorm:"index;column:workflow_id"`
	Status     string    `gorm:"column:status"`
	StartedAt  time.Time `gorm:"column:started_at"`
	Payload    []byte    `gorm:"column:payload"`
}

func (executionRecord) TableName() string { return "executions" }

// OpenSQLite opens (or creates) the database and migrates both tables.
// Use ":memory:" for an in-process database.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&workflowRecord{}, &executionRecord{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite schema: %w", err)
	}
	return db, nil
}

// SQLiteWorkflowStore persists workflows in SQLite through GORM.
type SQLiteWorkflowStore struct {
	db *gorm.DB
}

// NewSQLiteWorkflowStore creates a workflow store over the database.
func NewSQLiteWorkflowStore(db *gorm.DB) *SQLiteWorkflowStore {
	return &SQLiteWorkflowStore{db: db}
}

// Save upserts the workflow by ID.
func (s *SQLiteWorkflowStore) Save(ctx context.Context, wf *types.Workflow) error {
	payload, err := json.Marshal(wf)
	if err != nil {
		return fmt.Errorf("marshal workflow %s: %w", wf.ID, err)
	}
	record := workflowRecord{
		ID:        wf.ID,
		OwnerID:   wf.OwnerID,
		Status:    string(wf.Status),
		CreatedAt: wf.CreatedAt,
		Payload:   payload,
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("save workflow %s: %w", wf.ID, err)
	}
	return nil
}

// Get loads a workflow by ID.
func (s *SQLiteWorkflowStore) Get(ctx context.Context, id string) (*types.Workflow, error) {
	var record workflowRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow %s: %w", id, err)
	}
	var wf types.Workflow
	if err := json.Unmarshal(record.Payload, &wf); err != nil {
		return nil, fmt.Errorf("decode workflow %s: %w", id, err)
	}
	return &wf, nil
}

// ListByOwner returns the owner's workflows, newest first.
func (s *SQLiteWorkflowStore) ListByOwner(ctx context.Context, ownerID string) ([]*types.Workflow, error) {
	var records []workflowRecord
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list workflows for %s: %w", ownerID, err)
	}

	workflows := make([]*types.Workflow, 0, len(records))
	for _, record := range records {
		var wf types.Workflow
		if err := json.Unmarshal(record.Payload, &wf); err != nil {
			return nil, fmt.Errorf("decode workflow %s: %w", record.ID, err)
		}
		workflows = append(workflows, &wf)
	}
	return workflows, nil
}

// SQLiteExecutionStore persists executions in SQLite through GORM.
type SQLiteExecutionStore struct {
	db *gorm.DB
}

// NewSQLiteExecutionStore creates an execution store over the database.
func NewSQLiteExecutionStore(db *gorm.DB) *SQLiteExecutionStore {
	return &SQLiteExecutionStore{db: db}
}

// Save upserts the execution by ID.
func (s *SQLiteExecutionStore) Save(ctx context.Context, exec *types.Execution) error {
	payload, err := json.Marshal(exec)
	if err != nil {
		return fmt.Errorf("marshal execution %s: %w", exec.ID, err)
	}
	record := executionRecord{
		ID:         exec.ID,
		WorkflowID: exec.WorkflowID,
		Status:     string(exec.Status),
		StartedAt:  exec.StartedAt,
		Payload:    payload,
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("save execution %s: %w", exec.ID, err)
	}
	return nil
}

// Get loads an execution by ID.
func (s *SQLiteExecutionStore) Get(ctx context.Context, id string) (*types.Execution, error) {
	var record executionRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get execution %s: %w", id, err)
	}
	var exec types.Execution
	if err := json.Unmarshal(record.Payload, &exec); err != nil {
		return nil, fmt.Errorf("decode execution %s: %w", id, err)
	}
	return &exec, nil
}
