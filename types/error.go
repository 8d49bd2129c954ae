package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the orchestrator.
type ErrorCode string

const (
	// ErrInvalidRequest caller-supplied arguments failed validation.
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrGeneration planning failed: malformed LLM output, empty plan,
	// or an unresolvable tool reference. Nothing is persisted.
	ErrGeneration ErrorCode = "GENERATION_FAILED"
	// ErrNotFound referenced workflow/execution does not exist.
	ErrNotFound ErrorCode = "NOT_FOUND"
	// ErrInvalidState operation attempted in the wrong lifecycle state.
	ErrInvalidState ErrorCode = "INVALID_STATE"
	// ErrStepFailed a single agent's tool invocation or prompt rendering
	// failed during execution.
	ErrStepFailed ErrorCode = "STEP_FAILED"
	// ErrToolNotFound tool name does not resolve in the registry.
	ErrToolNotFound ErrorCode = "TOOL_NOT_FOUND"
	// ErrUpstreamError upstream LLM/search/store call failed.
	ErrUpstreamError ErrorCode = "UPSTREAM_ERROR"
	// ErrUpstreamTimeout upstream call timed out.
	ErrUpstreamTimeout ErrorCode = "UPSTREAM_TIMEOUT"
	// ErrInternalError unexpected internal failure.
	ErrInternalError ErrorCode = "INTERNAL_ERROR"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// GetErrorCode extracts the error code from an error chain.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}

// NewGenerationError builds a GENERATION_FAILED error with a reason.
func NewGenerationError(reason string) *Error {
	return NewError(ErrGeneration, reason)
}

// NewNotFound builds a NOT_FOUND error for an entity kind and id.
func NewNotFound(kind, id string) *Error {
	return NewError(ErrNotFound, fmt.Sprintf("%s %s not found", kind, id))
}

// NewInvalidState builds an INVALID_STATE error describing the rejected
// operation and the state that blocked it.
func NewInvalidState(op, state string) *Error {
	return NewError(ErrInvalidState, fmt.Sprintf("cannot %s in state %q", op, state))
}
