package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ProcessBackend executes code with os/exec on the host.
// WARNING: only use in trusted environments with OS-level sandboxing;
// it must be enabled explicitly.
type ProcessBackend struct {
	interpreters map[Language]string
	enabled      bool
	logger       *zap.Logger
}

// NewProcessBackend creates a process backend. It refuses to run
// anything until enabled is true.
func NewProcessBackend(logger *zap.Logger, enabled bool) *ProcessBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessBackend{
		interpreters: map[Language]string{
			LangPython:     "python3",
			LangJavaScript: "node",
			LangBash:       "bash",
		},
		enabled: enabled,
		logger:  logger.With(zap.String("component", "process_backend")),
	}
}

// Name returns the backend name.
func (p *ProcessBackend) Name() string { return "process" }

// Execute runs code in a local process.
func (p *ProcessBackend) Execute(ctx context.Context, req *Request, config Config) (*Result, error) {
	start := time.Now()
	result := &Result{ID: req.ID, ExitCode: -1}

	if !p.enabled {
		result.Error = "process backend disabled - enable explicitly with NewProcessBackend(logger, true)"
		return result, nil
	}

	interpreter, ok := p.interpreters[req.Language]
	if !ok {
		result.Error = fmt.Sprintf("no interpreter for language: %s", req.Language)
		return result, nil
	}

	tempDir, err := os.MkdirTemp("", "floworc_proc_")
	if err != nil {
		result.Error = fmt.Sprintf("failed to create temp dir: %v", err)
		return result, nil
	}
	defer os.RemoveAll(tempDir)

	codeFile := filepath.Join(tempDir, codeFilename(req.Language))
	if err := os.WriteFile(codeFile, []byte(req.Code), 0o644); err != nil {
		result.Error = fmt.Sprintf("failed to write code: %v", err)
		return result, nil
	}

	cmd := exec.CommandContext(ctx, interpreter, codeFile)
	cmd.Dir = tempDir
	cmd.Env = os.Environ()
	for k, v := range config.EnvVars {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	for k, v := range req.EnvVars {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if req.Stdin != "" {
		cmd.Stdin = strings.NewReader(req.Stdin)
	}

	p.logger.Debug("executing process",
		zap.String("interpreter", interpreter),
		zap.String("language", string(req.Language)))

	err = cmd.Run()

	result.Duration = time.Since(start)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			result.Error = "execution timeout"
		} else if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.Error = err.Error()
		}
	}

	result.Success = result.ExitCode == 0 && result.Error == ""
	return result, nil
}
