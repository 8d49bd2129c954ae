package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HealthCheck is one dependency probe.
type HealthCheck interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthCheckFunc adapts a function into a HealthCheck.
type HealthCheckFunc struct {
	CheckName string
	Fn        func(ctx context.Context) error
}

// Name returns the check name.
func (f HealthCheckFunc) Name() string { return f.CheckName }

// Check runs the probe.
func (f HealthCheckFunc) Check(ctx context.Context) error { return f.Fn(ctx) }

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	logger *zap.Logger
	mu     sync.RWMutex
	checks []HealthCheck
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{logger: logger.With(zap.String("handler", "health"))}
}

// RegisterCheck adds a readiness probe.
func (h *HealthHandler) RegisterCheck(check HealthCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, check)
}

type healthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HandleHealthz serves GET /healthz: liveness only.
func (h *HealthHandler) HandleHealthz(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, healthStatus{Status: "healthy", Timestamp: time.Now().UTC()})
}

// HandleReadyz serves GET /readyz: every registered probe must pass.
func (h *HealthHandler) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	h.mu.RLock()
	checks := append([]HealthCheck(nil), h.checks...)
	h.mu.RUnlock()

	status := healthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]string),
	}

	healthy := true
	for _, check := range checks {
		if err := check.Check(ctx); err != nil {
			status.Checks[check.Name()] = "fail: " + err.Error()
			healthy = false
			h.logger.Warn("readiness check failed",
				zap.String("check", check.Name()), zap.Error(err))
			continue
		}
		status.Checks[check.Name()] = "pass"
	}

	if !healthy {
		status.Status = "unhealthy"
		WriteJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	WriteJSON(w, http.StatusOK, status)
}
