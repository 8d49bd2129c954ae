package sandbox

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend returns a fixed result and records the deadline it saw.
type fakeBackend struct {
	result   *Result
	err      error
	deadline time.Duration
}

func (f *fakeBackend) Execute(ctx context.Context, req *Request, _ Config) (*Result, error) {
	if dl, ok := ctx.Deadline(); ok {
		f.deadline = time.Until(dl)
	}
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	res.ID = req.ID
	return &res, nil
}

func (f *fakeBackend) Name() string { return "fake" }

func newTestExecutor(backend Backend) *Executor {
	cfg := DefaultConfig()
	cfg.MaxOutputBytes = 16
	return NewExecutor(cfg, backend, nil)
}

func TestExecutor_Execute(t *testing.T) {
	backend := &fakeBackend{result: &Result{Success: true, ExitCode: 0, Stdout: "ok"}}
	e := newTestExecutor(backend)

	res, err := e.Execute(context.Background(), &Request{ID: "r1", Language: LangPython, Code: "print('ok')"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "r1", res.ID)
	assert.Equal(t, "ok", res.Stdout)
	assert.False(t, res.Truncated)
}

func TestExecutor_RejectsEmptyCode(t *testing.T) {
	e := newTestExecutor(&fakeBackend{result: &Result{Success: true}})
	_, err := e.Execute(context.Background(), &Request{Language: LangPython})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code is required")
}

func TestExecutor_RejectsDisallowedLanguage(t *testing.T) {
	e := newTestExecutor(&fakeBackend{result: &Result{Success: true}})
	_, err := e.Execute(context.Background(), &Request{Language: LangJavaScript, Code: "1+1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed")
}

func TestExecutor_TruncatesOutput(t *testing.T) {
	backend := &fakeBackend{result: &Result{
		Success: true,
		Stdout:  strings.Repeat("a", 100),
		Stderr:  strings.Repeat("b", 100),
	}}
	e := newTestExecutor(backend)

	res, err := e.Execute(context.Background(), &Request{ID: "r1", Language: LangPython, Code: "x"})
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Len(t, res.Stdout, 16)
	assert.Len(t, res.Stderr, 16)
}

func TestExecutor_RequestTimeoutCapped(t *testing.T) {
	backend := &fakeBackend{result: &Result{Success: true}}
	cfg := DefaultConfig()
	cfg.Timeout = time.Minute
	e := NewExecutor(cfg, backend, nil)

	_, err := e.Execute(context.Background(), &Request{
		ID: "r1", Language: LangPython, Code: "x", Timeout: time.Second,
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, backend.deadline, time.Second)
	assert.Greater(t, backend.deadline, time.Duration(0))
}

func TestExecutor_Stats(t *testing.T) {
	backend := &fakeBackend{result: &Result{Success: true, ExitCode: 0}}
	e := newTestExecutor(backend)

	for i := 0; i < 3; i++ {
		_, err := e.Execute(context.Background(), &Request{ID: "r", Language: LangPython, Code: "x"})
		require.NoError(t, err)
	}
	backend.result = &Result{Success: false, ExitCode: 1, Stderr: "boom"}
	_, err := e.Execute(context.Background(), &Request{ID: "r", Language: LangPython, Code: "x"})
	require.NoError(t, err)

	stats := e.Stats()
	assert.Equal(t, int64(4), stats.TotalExecutions)
	assert.Equal(t, int64(3), stats.SuccessExecutions)
	assert.Equal(t, int64(1), stats.FailedExecutions)
}

func TestProcessBackend_DisabledByDefault(t *testing.T) {
	backend := NewProcessBackend(nil, false)
	res, err := backend.Execute(context.Background(), &Request{
		ID: "r1", Language: LangPython, Code: "print(1)",
	}, DefaultConfig())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "disabled")
}
