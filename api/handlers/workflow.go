package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/floworc/floworc/internal/metrics"
	"github.com/floworc/floworc/workflow"
)

// WorkflowHandler serves workflow generation, approval, and reads.
type WorkflowHandler struct {
	generator *workflow.Generator
	lifecycle *workflow.Lifecycle
	metrics   *metrics.Collector
	logger    *zap.Logger
}

// NewWorkflowHandler creates the workflow handler.
func NewWorkflowHandler(generator *workflow.Generator, lifecycle *workflow.Lifecycle, collector *metrics.Collector, logger *zap.Logger) *WorkflowHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkflowHandler{
		generator: generator,
		lifecycle: lifecycle,
		metrics:   collector,
		logger:    logger.With(zap.String("handler", "workflow")),
	}
}

type generateRequest struct {
	TaskDescription string         `json:"task_description"`
	DataInventory   map[string]any `json:"data_inventory,omitempty"`
	OwnerID         string         `json:"owner_id"`
}

// HandleGenerate serves POST /v1/workflows.
func (h *WorkflowHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	start := time.Now()
	wf, err := h.generator.Generate(r.Context(), req.TaskDescription, req.DataInventory, req.OwnerID)
	h.metrics.ObserveGeneration(time.Since(start), err == nil)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteData(w, http.StatusCreated, wf)
}

// HandleGet serves GET /v1/workflows/{id}.
func (h *WorkflowHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	wf, err := h.lifecycle.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, wf)
}

// HandleList serves GET /v1/workflows?owner_id=...
func (h *WorkflowHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	workflows, err := h.lifecycle.List(r.Context(), r.URL.Query().Get("owner_id"))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, workflows)
}

// HandleApprove serves POST /v1/workflows/{id}/approve.
func (h *WorkflowHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	wf, err := h.lifecycle.Approve(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, wf)
}

// HandleReject serves POST /v1/workflows/{id}/reject.
func (h *WorkflowHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	wf, err := h.lifecycle.Reject(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	WriteSuccess(w, wf)
}
