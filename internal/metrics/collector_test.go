package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_RecordHTTPRequest(t *testing.T) {
	c := NewCollector("test", nil)

	c.RecordHTTPRequest("GET", "/v1/workflows", 200, 100*time.Millisecond)
	c.RecordHTTPRequest("POST", "/v1/workflows", 422, 50*time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(c.httpRequestsTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.httpRequestsTotal.WithLabelValues("POST", "/v1/workflows", "4xx")))
}

func TestCollector_ObserveExecution(t *testing.T) {
	c := NewCollector("test", nil)

	c.ObserveExecution("completed", time.Second)
	c.ObserveExecution("completed", 2*time.Second)
	c.ObserveExecution("failed", time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.executionsTotal.WithLabelValues("completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.executionsTotal.WithLabelValues("failed")))
}

func TestCollector_ObserveStep(t *testing.T) {
	c := NewCollector("test", nil)

	c.ObserveStep([]string{"rag_builder"}, time.Second, true)
	c.ObserveStep(nil, time.Second, false)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.stepsTotal.WithLabelValues("rag_builder", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.stepsTotal.WithLabelValues("chat", "failure")))
}

func TestCollector_ObserveGeneration(t *testing.T) {
	c := NewCollector("test", nil)

	c.ObserveGeneration(time.Second, true)
	c.ObserveGeneration(time.Second, false)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.generationsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.generationsTotal.WithLabelValues("failure")))
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
		c.ObserveGeneration(time.Millisecond, true)
		c.ObserveExecution("completed", time.Millisecond)
		c.ObserveStep([]string{"llm_chat"}, time.Millisecond, true)
		c.Registry()
	})
}

func TestCollector_RegistryServesMetrics(t *testing.T) {
	c := NewCollector("test", nil)
	c.ObserveExecution("completed", time.Second)

	families, err := c.Registry().Gather()
	assert.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, fam := range families {
		names = append(names, fam.GetName())
	}
	assert.Contains(t, names, "test_executions_total")
}
