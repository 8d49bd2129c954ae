package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/floworc/floworc/types"
)

// RedisExecutionStore keeps execution records as JSON values in Redis.
// Suited for deployments where executions are read often while running
// and can be expired after they finish.
type RedisExecutionStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisExecutionStore creates an execution store over the client.
func NewRedisExecutionStore(client *redis.Client, keyPrefix string) *RedisExecutionStore {
	if keyPrefix == "" {
		keyPrefix = "floworc"
	}
	return &RedisExecutionStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisExecutionStore) key(id string) string {
	return fmt.Sprintf("%s:execution:%s", s.keyPrefix, id)
}

// Save writes the execution as JSON.
func (s *RedisExecutionStore) Save(ctx context.Context, exec *types.Execution) error {
	payload, err := json.Marshal(exec)
	if err != nil {
		return fmt.Errorf("marshal execution %s: %w", exec.ID, err)
	}
	if err := s.client.Set(ctx, s.key(exec.ID), payload, 0).Err(); err != nil {
		return fmt.Errorf("save execution %s: %w", exec.ID, err)
	}
	return nil
}

// Get loads an execution by ID.
func (s *RedisExecutionStore) Get(ctx context.Context, id string) (*types.Execution, error) {
	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get execution %s: %w", id, err)
	}
	var exec types.Execution
	if err := json.Unmarshal(payload, &exec); err != nil {
		return nil, fmt.Errorf("decode execution %s: %w", id, err)
	}
	return &exec, nil
}
