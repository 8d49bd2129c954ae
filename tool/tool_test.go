package tool

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floworc/floworc/planner"
	"github.com/floworc/floworc/sandbox"
	"github.com/floworc/floworc/types"
	"github.com/floworc/floworc/vectorstore"
)

// flatEmbedder gives every text the same vector so retrieval order is
// driven purely by insertion; good enough for plumbing tests.
type flatEmbedder struct{}

func (flatEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{1, float64(len(texts[i]))}
	}
	return out, nil
}

func (flatEmbedder) Dimensions() int { return 2 }

type scriptedChat struct {
	response string
	err      error
	requests []planner.ChatRequest
}

func (s *scriptedChat) Complete(_ context.Context, req planner.ChatRequest) (string, error) {
	s.requests = append(s.requests, req)
	return s.response, s.err
}

type fakeSearch struct {
	hits []SearchHit
	err  error
}

func (f *fakeSearch) Search(context.Context, string, int) ([]SearchHit, error) {
	return f.hits, f.err
}

func (f *fakeSearch) Name() string { return "fake" }

func newTestSession(t *testing.T) *vectorstore.Session {
	t.Helper()
	chunker, err := vectorstore.NewChunker(vectorstore.ChunkerConfig{
		ChunkSize: 100, ChunkOverlap: 10, MinChunkSize: 1, Encoding: "no_such_encoding",
	}, nil)
	require.NoError(t, err)
	p := vectorstore.NewProvisioner(vectorstore.DefaultProvisionerConfig(), chunker, flatEmbedder{}, nil, nil)
	return vectorstore.NewSession(p, nil)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(NewReportGenerator(nil))
	r.Register(NewLLMChat(nil, nil))

	tl, err := r.Resolve("report_generator")
	require.NoError(t, err)
	assert.Equal(t, "report_generator", tl.Contract().Name)

	_, err = r.Resolve("nope")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrToolNotFound))

	contracts := r.Contracts()
	require.Len(t, contracts, 2)
	assert.Equal(t, "llm_chat", contracts[0].Name)
	assert.Equal(t, "report_generator", contracts[1].Name)
}

func TestRAGBuilder(t *testing.T) {
	session := newTestSession(t)
	builder := NewRAGBuilder(nil)

	res, err := builder.Invoke(context.Background(), Invocation{
		AgentName: "indexer",
		Inputs: map[string]any{
			"documents":  []any{"first document", "second document"},
			"store_name": "kb",
		},
		Stores: session,
	})
	require.NoError(t, err)
	assert.Contains(t, res.Output, "2 documents")
	require.Len(t, res.SideEffects, 2)
	assert.Equal(t, types.SideEffectStoreProvisioned, res.SideEffects[0].Kind)
	assert.Equal(t, types.SideEffectDocumentsIndexed, res.SideEffects[1].Kind)
	assert.NotEmpty(t, session.Latest())
}

func TestRAGBuilder_MissingDocuments(t *testing.T) {
	builder := NewRAGBuilder(nil)
	_, err := builder.Invoke(context.Background(), Invocation{
		Inputs: map[string]any{},
		Stores: newTestSession(t),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "documents")
}

func TestRAGChat(t *testing.T) {
	ctx := context.Background()
	session := newTestSession(t)

	handle, err := session.Provision(ctx, vectorstore.ProvisionSpec{Name: "kb"})
	require.NoError(t, err)
	_, err = session.Index(ctx, handle.StoreID, []string{"paris is the capital of france"}, nil)
	require.NoError(t, err)

	chat := &scriptedChat{response: "Paris."}
	rag := NewRAGChat(chat, 3, nil)

	res, err := rag.Invoke(ctx, Invocation{Prompt: "what is the capital of france?", Stores: session})
	require.NoError(t, err)
	assert.Equal(t, "Paris.", res.Output)

	require.Len(t, chat.requests, 1)
	assert.Contains(t, chat.requests[0].User, "paris is the capital")
	assert.Contains(t, chat.requests[0].User, "what is the capital")
}

func TestRAGChat_NamedStore(t *testing.T) {
	ctx := context.Background()
	session := newTestSession(t)

	facts, err := session.Provision(ctx, vectorstore.ProvisionSpec{Name: "facts"})
	require.NoError(t, err)
	_, err = session.Index(ctx, facts.StoreID, []string{"water boils at 100 celsius"}, nil)
	require.NoError(t, err)

	notes, err := session.Provision(ctx, vectorstore.ProvisionSpec{Name: "notes"})
	require.NoError(t, err)
	_, err = session.Index(ctx, notes.StoreID, []string{"meeting moved to friday"}, nil)
	require.NoError(t, err)

	rag := NewRAGChat(nil, 3, nil)

	// store_name overrides the latest-provisioned default.
	res, err := rag.Invoke(ctx, Invocation{
		Prompt: "boiling point?",
		Inputs: map[string]any{"store_name": "facts"},
		Stores: session,
	})
	require.NoError(t, err)
	assert.Contains(t, res.Output, "water boils")
	assert.NotContains(t, res.Output, "meeting moved")

	// Without store_name the latest store is queried.
	res, err = rag.Invoke(ctx, Invocation{Prompt: "when is the meeting?", Stores: session})
	require.NoError(t, err)
	assert.Contains(t, res.Output, "meeting moved")

	_, err = rag.Invoke(ctx, Invocation{
		Prompt: "q",
		Inputs: map[string]any{"store_name": "nonexistent"},
		Stores: session,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestRAGChat_NoStore(t *testing.T) {
	rag := NewRAGChat(nil, 3, nil)
	_, err := rag.Invoke(context.Background(), Invocation{Prompt: "q", Stores: newTestSession(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no vector store")
}

func TestRAGChat_WithoutChatReturnsContext(t *testing.T) {
	ctx := context.Background()
	session := newTestSession(t)
	handle, err := session.Provision(ctx, vectorstore.ProvisionSpec{Name: "kb"})
	require.NoError(t, err)
	_, err = session.Index(ctx, handle.StoreID, []string{"some indexed text"}, nil)
	require.NoError(t, err)

	rag := NewRAGChat(nil, 3, nil)
	res, err := rag.Invoke(ctx, Invocation{Prompt: "query", Stores: session})
	require.NoError(t, err)
	assert.Contains(t, res.Output, "some indexed text")
}

type echoBackend struct{ result sandbox.Result }

func (e *echoBackend) Execute(_ context.Context, req *sandbox.Request, _ sandbox.Config) (*sandbox.Result, error) {
	res := e.result
	res.ID = req.ID
	return &res, nil
}

func (e *echoBackend) Name() string { return "echo" }

func TestCodeExecutor(t *testing.T) {
	backend := &echoBackend{result: sandbox.Result{Success: true, Stdout: "42\n"}}
	executor := sandbox.NewExecutor(sandbox.DefaultConfig(), backend, nil)
	ce := NewCodeExecutor(executor, nil)

	res, err := ce.Invoke(context.Background(), Invocation{
		Prompt: "Compute the answer:\n```python\nprint(42)\n```",
	})
	require.NoError(t, err)
	assert.Equal(t, "42", res.Output)
	require.Len(t, res.SideEffects, 1)
	assert.Equal(t, types.SideEffectCodeRun, res.SideEffects[0].Kind)
}

func TestCodeExecutor_Failure(t *testing.T) {
	backend := &echoBackend{result: sandbox.Result{Success: false, ExitCode: 1, Stderr: "NameError"}}
	executor := sandbox.NewExecutor(sandbox.DefaultConfig(), backend, nil)
	ce := NewCodeExecutor(executor, nil)

	_, err := ce.Invoke(context.Background(), Invocation{
		Inputs: map[string]any{"code": "print(x)"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NameError")
}

func TestCodeExecutor_NoCode(t *testing.T) {
	executor := sandbox.NewExecutor(sandbox.DefaultConfig(), &echoBackend{}, nil)
	ce := NewCodeExecutor(executor, nil)
	_, err := ce.Invoke(context.Background(), Invocation{Prompt: "no code here"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no code to execute")
}

func TestWebSearch(t *testing.T) {
	provider := &fakeSearch{hits: []SearchHit{
		{Title: "Go", URL: "https://go.dev", Snippet: "The Go programming language"},
	}}
	ws := NewWebSearch(provider, 5, nil)

	res, err := ws.Invoke(context.Background(), Invocation{Prompt: "golang"})
	require.NoError(t, err)
	assert.Contains(t, res.Output, "https://go.dev")
	require.Len(t, res.SideEffects, 1)
	assert.Equal(t, types.SideEffectWebSearch, res.SideEffects[0].Kind)
}

func TestWebSearch_Errors(t *testing.T) {
	ws := NewWebSearch(&fakeSearch{err: errors.New("quota exceeded")}, 5, nil)
	_, err := ws.Invoke(context.Background(), Invocation{Prompt: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	_, err = ws.Invoke(context.Background(), Invocation{Prompt: "   "})
	require.Error(t, err)
}

func TestReportGenerator(t *testing.T) {
	rg := NewReportGenerator(nil)
	res, err := rg.Invoke(context.Background(), Invocation{
		Prompt: "Summary of findings.",
		Inputs: map[string]any{"report_title": "Research Results"},
		Prior: []types.StepResult{
			{AgentPosition: 0, Output: "found A"},
			{AgentPosition: 1, Output: "found B", SideEffects: []types.SideEffect{
				{Kind: types.SideEffectWebSearch, Detail: "3 results"},
			}},
		},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Output, "# Research Results"))
	assert.Contains(t, res.Output, "## Step 1")
	assert.Contains(t, res.Output, "found A")
	assert.Contains(t, res.Output, "## Step 2")
	assert.Contains(t, res.Output, "web_search: 3 results")
}

func TestLLMChat(t *testing.T) {
	chat := &scriptedChat{response: "hello there"}
	lc := NewLLMChat(chat, nil)

	res, err := lc.Invoke(context.Background(), Invocation{
		AgentRole: "You are a greeter.",
		Prompt:    "say hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello there", res.Output)
	require.Len(t, chat.requests, 1)
	assert.Equal(t, "You are a greeter.", chat.requests[0].System)

	_, err = lc.Invoke(context.Background(), Invocation{Prompt: "  "})
	require.Error(t, err)
}

func TestRegisterBuiltins(t *testing.T) {
	r := NewRegistry(nil)
	executor := sandbox.NewExecutor(sandbox.DefaultConfig(), &echoBackend{}, nil)
	RegisterBuiltins(r, BuiltinConfig{Sandbox: executor}, nil)

	names := make([]string, 0)
	for _, c := range r.Contracts() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{
		"code_executor", "llm_chat", "rag_builder", "rag_chat", "report_generator", "web_search",
	}, names)
}
