package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floworc/floworc/engine"
	"github.com/floworc/floworc/internal/metrics"
	"github.com/floworc/floworc/planner"
	"github.com/floworc/floworc/store"
	"github.com/floworc/floworc/tool"
	"github.com/floworc/floworc/types"
	"github.com/floworc/floworc/vectorstore"
	"github.com/floworc/floworc/workflow"
)

type scriptedPlanner struct {
	agents []planner.PlannedAgent
	err    error
}

func (s *scriptedPlanner) Plan(context.Context, string, map[string]any) ([]planner.PlannedAgent, error) {
	return s.agents, s.err
}

type echoTool struct{ name string }

func (e *echoTool) Contract() types.ToolContract {
	return types.ToolContract{Name: e.name, Description: "echo"}
}

func (e *echoTool) Invoke(_ context.Context, inv tool.Invocation) (*tool.Result, error) {
	return &tool.Result{Output: e.name + ": " + inv.Prompt}, nil
}

type flatEmbedder struct{}

func (flatEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{1}
	}
	return out, nil
}

func (flatEmbedder) Dimensions() int { return 1 }

var metricsNamespaceSeq int

func newTestServer(t *testing.T, p planner.Planner) *httptest.Server {
	t.Helper()

	registry := tool.NewRegistry(nil)
	registry.Register(&echoTool{name: "llm_chat"})
	registry.Register(&echoTool{name: "report_generator"})

	chunker, err := vectorstore.NewChunker(vectorstore.ChunkerConfig{
		ChunkSize: 100, ChunkOverlap: 10, MinChunkSize: 1, Encoding: "no_such_encoding",
	}, nil)
	require.NoError(t, err)
	provisioner := vectorstore.NewProvisioner(vectorstore.DefaultProvisionerConfig(), chunker, flatEmbedder{}, nil, nil)

	workflows := store.NewMemoryWorkflowStore()
	executions := store.NewMemoryExecutionStore()

	metricsNamespaceSeq++
	collector := metrics.NewCollector(fmt.Sprintf("handlers_test_%d", metricsNamespaceSeq), nil)

	generator := workflow.NewGenerator(p, registry, workflows, nil)
	lifecycle := workflow.NewLifecycle(workflows, nil)
	eng := engine.NewEngine(workflows, executions,
		engine.NewAgentExecutor(registry, nil, nil), provisioner, collector, nil)

	router := &Router{
		Workflows:  NewWorkflowHandler(generator, lifecycle, collector, nil),
		Executions: NewExecutionHandler(eng, nil),
		Health:     NewHealthHandler(nil),
		Metrics:    collector,
	}

	srv := httptest.NewServer(router.Mux())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body string) (*http.Response, Response) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp, decodeEnvelope(t, resp)
}

func getJSON(t *testing.T, url string) (*http.Response, Response) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	return resp, decodeEnvelope(t, resp)
}

func decodeEnvelope(t *testing.T, resp *http.Response) Response {
	t.Helper()
	defer resp.Body.Close()
	var envelope Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope
}

func dataField(t *testing.T, envelope Response, key string) any {
	t.Helper()
	obj, ok := envelope.Data.(map[string]any)
	require.True(t, ok, "data is not an object: %T", envelope.Data)
	return obj[key]
}

func generateWorkflow(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, envelope := postJSON(t, srv.URL+"/v1/workflows",
		`{"task_description":"do research","data_inventory":{"files":["a.pdf"]},"owner_id":"user_1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, envelope.Success)
	return dataField(t, envelope, "id").(string)
}

func defaultPlan() []planner.PlannedAgent {
	return []planner.PlannedAgent{
		{Name: "researcher", Role: "You research.", PromptTemplate: "research {{user_data.topic}}", Tools: []string{"llm_chat"}},
		{Name: "writer", Role: "You write.", PromptTemplate: "write up {{steps.0}}", Tools: []string{"report_generator"}},
	}
}

func TestGenerateWorkflow(t *testing.T) {
	srv := newTestServer(t, &scriptedPlanner{agents: defaultPlan()})

	resp, envelope := postJSON(t, srv.URL+"/v1/workflows",
		`{"task_description":"do research","owner_id":"user_1"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, envelope.Success)
	assert.True(t, strings.HasPrefix(dataField(t, envelope, "id").(string), "wf_"))
	assert.Equal(t, "generated", dataField(t, envelope, "status"))
	agents := dataField(t, envelope, "agents").([]any)
	assert.Len(t, agents, 2)
}

func TestGenerateWorkflow_Errors(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		srv := newTestServer(t, &scriptedPlanner{agents: defaultPlan()})
		resp, envelope := postJSON(t, srv.URL+"/v1/workflows", `{"task_description":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.False(t, envelope.Success)
		assert.Equal(t, "INVALID_REQUEST", envelope.Error.Code)
	})

	t.Run("missing owner", func(t *testing.T) {
		srv := newTestServer(t, &scriptedPlanner{agents: defaultPlan()})
		resp, envelope := postJSON(t, srv.URL+"/v1/workflows", `{"task_description":"t"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_REQUEST", envelope.Error.Code)
	})

	t.Run("generation failure", func(t *testing.T) {
		srv := newTestServer(t, &scriptedPlanner{err: types.NewGenerationError("model returned prose")})
		resp, envelope := postJSON(t, srv.URL+"/v1/workflows",
			`{"task_description":"t","owner_id":"user_1"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "GENERATION_FAILED", envelope.Error.Code)
	})
}

func TestGetAndListWorkflows(t *testing.T) {
	srv := newTestServer(t, &scriptedPlanner{agents: defaultPlan()})
	id := generateWorkflow(t, srv)

	resp, envelope := getJSON(t, srv.URL+"/v1/workflows/"+id)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, dataField(t, envelope, "id"))

	resp, envelope = getJSON(t, srv.URL+"/v1/workflows/wf_missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)

	resp, envelope = getJSON(t, srv.URL+"/v1/workflows?owner_id=user_1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	list := envelope.Data.([]any)
	assert.Len(t, list, 1)

	resp, envelope = getJSON(t, srv.URL+"/v1/workflows")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", envelope.Error.Code)
}

func TestApproveAndReject(t *testing.T) {
	srv := newTestServer(t, &scriptedPlanner{agents: defaultPlan()})
	id := generateWorkflow(t, srv)

	resp, envelope := postJSON(t, srv.URL+"/v1/workflows/"+id+"/approve", "{}")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "approved", dataField(t, envelope, "status"))
	assert.NotNil(t, dataField(t, envelope, "approved_at"))

	// Approved is terminal.
	resp, envelope = postJSON(t, srv.URL+"/v1/workflows/"+id+"/approve", "{}")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATE", envelope.Error.Code)

	resp, envelope = postJSON(t, srv.URL+"/v1/workflows/"+id+"/reject", "{}")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	other := generateWorkflow(t, srv)
	resp, envelope = postJSON(t, srv.URL+"/v1/workflows/"+other+"/reject", "{}")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rejected", dataField(t, envelope, "status"))
}

func TestExecuteWorkflow(t *testing.T) {
	srv := newTestServer(t, &scriptedPlanner{agents: defaultPlan()})
	id := generateWorkflow(t, srv)

	// Not approved yet.
	resp, envelope := postJSON(t, srv.URL+"/v1/workflows/"+id+"/execute",
		`{"user_data":{"topic":"go"}}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATE", envelope.Error.Code)

	resp, _ = postJSON(t, srv.URL+"/v1/workflows/"+id+"/approve", "{}")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, envelope = postJSON(t, srv.URL+"/v1/workflows/"+id+"/execute",
		`{"user_data":{"topic":"go"}}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "completed", dataField(t, envelope, "status"))
	execID := dataField(t, envelope, "id").(string)
	assert.True(t, strings.HasPrefix(execID, "exec_"))
	steps := dataField(t, envelope, "step_results").([]any)
	assert.Len(t, steps, 2)

	resp, envelope = getJSON(t, srv.URL+"/v1/executions/"+execID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, execID, dataField(t, envelope, "id"))

	resp, envelope = getJSON(t, srv.URL+"/v1/executions/exec_missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExecuteWorkflow_MissingUserDataFailsRun(t *testing.T) {
	srv := newTestServer(t, &scriptedPlanner{agents: defaultPlan()})
	id := generateWorkflow(t, srv)
	resp, _ := postJSON(t, srv.URL+"/v1/workflows/"+id+"/approve", "{}")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, envelope := postJSON(t, srv.URL+"/v1/workflows/"+id+"/execute", `{"user_data":{}}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, "step failures still produce a record")
	assert.Equal(t, "failed", dataField(t, envelope, "status"))
	errObj := dataField(t, envelope, "error").(map[string]any)
	assert.Equal(t, float64(0), errObj["position"])
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, &scriptedPlanner{agents: defaultPlan()})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReadyzFailingCheck(t *testing.T) {
	handler := NewHealthHandler(nil)
	handler.RegisterCheck(HealthCheckFunc{
		CheckName: "store",
		Fn:        func(context.Context) error { return errors.New("connection refused") },
	})

	rec := httptest.NewRecorder()
	handler.HandleReadyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &scriptedPlanner{agents: defaultPlan()})
	generateWorkflow(t, srv)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_requests_total")
	assert.Contains(t, string(body), "workflow_generations_total")
}
