package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/floworc/floworc/types"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorInfo `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// ErrorInfo is the serialized error payload.
type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a 200 envelope around data.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteData(w, http.StatusOK, data)
}

// WriteData writes a success envelope with an explicit status.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// WriteError maps the error to an HTTP status and writes the envelope.
// Errors that are not *types.Error become 500s.
func WriteError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var typed *types.Error
	if !errors.As(err, &typed) {
		typed = types.NewError(types.ErrInternalError, "internal error").WithCause(err)
	}

	status := typed.HTTPStatus
	if status == 0 {
		status = httpStatusFor(typed.Code)
	}

	if logger != nil {
		logger.Warn("request failed",
			zap.String("code", string(typed.Code)),
			zap.String("message", typed.Message),
			zap.Int("status", status),
			zap.Error(typed.Cause))
	}

	WriteJSON(w, status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      string(typed.Code),
			Message:   typed.Message,
			Retryable: typed.Retryable,
		},
		Timestamp: time.Now().UTC(),
	})
}

func httpStatusFor(code types.ErrorCode) int {
	switch code {
	case types.ErrInvalidRequest:
		return http.StatusBadRequest
	case types.ErrNotFound:
		return http.StatusNotFound
	case types.ErrInvalidState:
		return http.StatusConflict
	case types.ErrGeneration, types.ErrToolNotFound:
		return http.StatusUnprocessableEntity
	case types.ErrUpstreamTimeout:
		return http.StatusGatewayTimeout
	case types.ErrUpstreamError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSONBody decodes the request body into dst, rejecting unknown
// fields. On failure it writes the error response and returns it.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any, logger *zap.Logger) error {
	if r.Body == nil {
		err := types.NewError(types.ErrInvalidRequest, "request body is empty")
		WriteError(w, err, logger)
		return err
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		apiErr := types.NewError(types.ErrInvalidRequest, "invalid JSON body").WithCause(err)
		WriteError(w, apiErr, logger)
		return apiErr
	}
	return nil
}

// ResponseWriter captures the status code for request metrics.
type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
	written    bool
}

// NewResponseWriter wraps w.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
}

// WriteHeader records the first status code written.
func (rw *ResponseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.StatusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

// Write marks the response as written.
func (rw *ResponseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
