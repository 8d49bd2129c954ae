package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/floworc/floworc/engine"
)

// ExecutionHandler serves workflow execution and execution reads.
// Execution is synchronous: the response carries the finished record,
// so the server's write timeout bounds the longest allowed run.
type ExecutionHandler struct {
	engine *engine.Engine
	logger *zap.Logger
}

// NewExecutionHandler creates the execution handler.
func NewExecutionHandler(eng *engine.Engine, logger *zap.Logger) *ExecutionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecutionHandler{
		engine: eng,
		logger: logger.With(zap.String("handler", "execution")),
	}
}

type executeRequest struct {
	UserData map[string]any `json:"user_data,omitempty"`
}

// HandleExecute serves POST /v1/workflows/{id}/execute.
func (h *ExecutionHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	exec, err := h.engine.Execute(r.Context(), r.PathValue("id"), req.UserData)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	// A failed execution is still a created record: 201 either way,
	// with the outcome in the record's status.
	WriteData(w, http.StatusCreated, exec)
}

// HandleGet serves GET /v1/executions/{id}.
func (h *ExecutionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	exec, err := h.engine.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, exec)
}
