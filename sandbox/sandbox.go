// Package sandbox provides isolated execution of agent-generated code.
// The docker backend is the default; the process backend exists for
// trusted environments and must be enabled explicitly.
package sandbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Mode selects the execution backend.
type Mode string

const (
	ModeDocker  Mode = "docker"
	ModeProcess Mode = "process" // trusted environments only
)

// Language represents supported programming languages.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangBash       Language = "bash"
)

// Config configures the sandbox executor.
type Config struct {
	Mode             Mode              `json:"mode"`
	Timeout          time.Duration     `json:"timeout"`
	MaxMemoryMB      int               `json:"max_memory_mb"`
	MaxCPUPercent    int               `json:"max_cpu_percent"`
	NetworkEnabled   bool              `json:"network_enabled"`
	EnvVars          map[string]string `json:"env_vars,omitempty"`
	MaxOutputBytes   int               `json:"max_output_bytes"`
	AllowedLanguages []Language        `json:"allowed_languages"`
}

// DefaultConfig returns secure defaults.
func DefaultConfig() Config {
	return Config{
		Mode:             ModeDocker,
		Timeout:          30 * time.Second,
		MaxMemoryMB:      512,
		MaxCPUPercent:    50,
		NetworkEnabled:   false,
		MaxOutputBytes:   1 << 20,
		AllowedLanguages: []Language{LangPython, LangBash},
	}
}

// Request is one code execution request.
type Request struct {
	ID       string            `json:"id"`
	Language Language          `json:"language"`
	Code     string            `json:"code"`
	Stdin    string            `json:"stdin,omitempty"`
	EnvVars  map[string]string `json:"env_vars,omitempty"`
	Timeout  time.Duration     `json:"timeout,omitempty"`
}

// Result is the outcome of a code execution.
type Result struct {
	ID        string        `json:"id"`
	Success   bool          `json:"success"`
	ExitCode  int           `json:"exit_code"`
	Stdout    string        `json:"stdout"`
	Stderr    string        `json:"stderr"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Truncated bool          `json:"truncated,omitempty"`
}

// Backend runs a single request under the sandbox policy.
type Backend interface {
	Execute(ctx context.Context, req *Request, config Config) (*Result, error)
	Name() string
}

// Stats tracks execution statistics.
type Stats struct {
	TotalExecutions   int64         `json:"total_executions"`
	SuccessExecutions int64         `json:"success_executions"`
	FailedExecutions  int64         `json:"failed_executions"`
	TimeoutExecutions int64         `json:"timeout_executions"`
	TotalDuration     time.Duration `json:"total_duration"`
}

// Executor validates requests, enforces timeouts and output limits, and
// delegates to the configured backend.
type Executor struct {
	config  Config
	backend Backend
	logger  *zap.Logger
	mu      sync.Mutex
	stats   Stats
}

// NewExecutor creates a sandbox executor.
func NewExecutor(config Config, backend Backend, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		config:  config,
		backend: backend,
		logger:  logger.With(zap.String("component", "sandbox")),
	}
}

// Execute runs code in the sandbox.
func (e *Executor) Execute(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()

	if err := e.validate(req); err != nil {
		return nil, err
	}

	timeout := e.config.Timeout
	if req.Timeout > 0 && req.Timeout < timeout {
		timeout = req.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	e.logger.Debug("executing code",
		zap.String("id", req.ID),
		zap.String("language", string(req.Language)),
		zap.Int("code_length", len(req.Code)))

	result, err := e.backend.Execute(ctx, req, e.config)

	e.mu.Lock()
	e.stats.TotalExecutions++
	e.stats.TotalDuration += time.Since(start)
	if err != nil || !result.Success {
		e.stats.FailedExecutions++
		if ctx.Err() == context.DeadlineExceeded {
			e.stats.TimeoutExecutions++
		}
	} else {
		e.stats.SuccessExecutions++
	}
	e.mu.Unlock()

	if err != nil {
		return nil, err
	}

	if len(result.Stdout) > e.config.MaxOutputBytes {
		result.Stdout = result.Stdout[:e.config.MaxOutputBytes]
		result.Truncated = true
	}
	if len(result.Stderr) > e.config.MaxOutputBytes {
		result.Stderr = result.Stderr[:e.config.MaxOutputBytes]
		result.Truncated = true
	}

	result.Duration = time.Since(start)
	return result, nil
}

// Stats returns a snapshot of the execution counters.
func (e *Executor) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

func (e *Executor) validate(req *Request) error {
	if req.Code == "" {
		return fmt.Errorf("code is required")
	}
	for _, lang := range e.config.AllowedLanguages {
		if lang == req.Language {
			return nil
		}
	}
	return fmt.Errorf("language %s is not allowed", req.Language)
}
