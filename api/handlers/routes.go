package handlers

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/floworc/floworc/internal/metrics"
)

// Router bundles the handlers behind one mux.
type Router struct {
	Workflows  *WorkflowHandler
	Executions *ExecutionHandler
	Health     *HealthHandler
	Metrics    *metrics.Collector
}

// Mux builds the HTTP mux with all routes registered.
func (rt *Router) Mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/workflows", rt.instrument("/v1/workflows", rt.Workflows.HandleGenerate))
	mux.HandleFunc("GET /v1/workflows", rt.instrument("/v1/workflows", rt.Workflows.HandleList))
	mux.HandleFunc("GET /v1/workflows/{id}", rt.instrument("/v1/workflows/{id}", rt.Workflows.HandleGet))
	mux.HandleFunc("POST /v1/workflows/{id}/approve", rt.instrument("/v1/workflows/{id}/approve", rt.Workflows.HandleApprove))
	mux.HandleFunc("POST /v1/workflows/{id}/reject", rt.instrument("/v1/workflows/{id}/reject", rt.Workflows.HandleReject))
	mux.HandleFunc("POST /v1/workflows/{id}/execute", rt.instrument("/v1/workflows/{id}/execute", rt.Executions.HandleExecute))
	mux.HandleFunc("GET /v1/executions/{id}", rt.instrument("/v1/executions/{id}", rt.Executions.HandleGet))

	mux.HandleFunc("GET /healthz", rt.Health.HandleHealthz)
	mux.HandleFunc("GET /readyz", rt.Health.HandleReadyz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(rt.Metrics.Registry(), promhttp.HandlerOpts{}))

	return mux
}

// instrument records request metrics with the route pattern, not the
// raw path, so IDs do not explode label cardinality.
func (rt *Router) instrument(pattern string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := NewResponseWriter(w)
		next(rw, r)
		rt.Metrics.RecordHTTPRequest(r.Method, pattern, rw.StatusCode, time.Since(start))
	}
}
