package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector registers and records the orchestrator metrics on its own
// registry.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	generationsTotal   *prometheus.CounterVec
	generationDuration prometheus.Histogram

	executionsTotal   *prometheus.CounterVec
	executionDuration *prometheus.HistogramVec

	stepsTotal   *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector creates a collector under the given namespace.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	c := &Collector{
		registry: registry,
		logger:   logger.With(zap.String("component", "metrics")),
	}

	c.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	c.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.generationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_generations_total",
			Help:      "Total number of workflow generation attempts",
		},
		[]string{"status"},
	)
	c.generationDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_generation_duration_seconds",
			Help:      "Workflow generation duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	c.executionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "executions_total",
			Help:      "Total number of workflow executions",
		},
		[]string{"status"},
	)
	c.executionDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "execution_duration_seconds",
			Help:      "End-to-end execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"status"},
	)

	c.stepsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Total number of executed agent steps",
		},
		[]string{"tools", "status"},
	)
	c.stepDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Agent step duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"tools"},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))
	return c
}

// Registry returns the registry backing this collector, for the
// /metrics handler.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return prometheus.NewRegistry()
	}
	return c.registry
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.httpRequestsTotal.WithLabelValues(method, path, statusClass(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveGeneration records one workflow generation attempt.
func (c *Collector) ObserveGeneration(duration time.Duration, success bool) {
	if c == nil {
		return
	}
	c.generationsTotal.WithLabelValues(outcome(success)).Inc()
	c.generationDuration.Observe(duration.Seconds())
}

// ObserveExecution records one finished execution.
func (c *Collector) ObserveExecution(status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.executionsTotal.WithLabelValues(status).Inc()
	c.executionDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// ObserveStep records one agent step.
func (c *Collector) ObserveStep(tools []string, duration time.Duration, success bool) {
	if c == nil {
		return
	}
	label := strings.Join(tools, ",")
	if label == "" {
		label = "chat"
	}
	c.stepsTotal.WithLabelValues(label, outcome(success)).Inc()
	c.stepDuration.WithLabelValues(label).Observe(duration.Seconds())
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func statusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
