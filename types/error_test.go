package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewError(ErrUpstreamError, "planner call failed").
		WithCause(cause).
		WithRetryable(true)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "UPSTREAM_ERROR")
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, err.Retryable)
}

func TestGetErrorCode(t *testing.T) {
	inner := NewNotFound("workflow", "wf_abc")
	wrapped := fmt.Errorf("lookup: %w", inner)

	assert.Equal(t, ErrNotFound, GetErrorCode(wrapped))
	assert.True(t, IsCode(wrapped, ErrNotFound))
	assert.False(t, IsCode(wrapped, ErrInvalidState))
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
}

func TestNewInvalidState(t *testing.T) {
	err := NewInvalidState("approve workflow", string(WorkflowApproved))
	assert.Equal(t, ErrInvalidState, err.Code)
	assert.Contains(t, err.Message, "approve workflow")
	assert.Contains(t, err.Message, "approved")
}

func TestNewID(t *testing.T) {
	id := NewID("wf")
	require.Len(t, id, 3+12)
	assert.Equal(t, "wf_", id[:3])
	assert.NotEqual(t, id, NewID("wf"))
}
