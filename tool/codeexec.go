package tool

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/floworc/floworc/sandbox"
	"github.com/floworc/floworc/types"
)

var codeFenceRe = regexp.MustCompile("(?s)```([a-zA-Z]*)\\n(.*?)```")

// CodeExecutor runs code in the sandbox. The code comes from the "code"
// input when present, otherwise from the first fenced block in the
// rendered prompt.
type CodeExecutor struct {
	executor *sandbox.Executor
	logger   *zap.Logger
}

// NewCodeExecutor creates the code_executor tool.
func NewCodeExecutor(executor *sandbox.Executor, logger *zap.Logger) *CodeExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CodeExecutor{
		executor: executor,
		logger:   logger.With(zap.String("tool", "code_executor")),
	}
}

// Contract describes the tool to the planner.
func (t *CodeExecutor) Contract() types.ToolContract {
	return types.ToolContract{
		Name:        "code_executor",
		Description: "Executes code in an isolated sandbox and returns stdout, stderr, and the exit code. Put the code in a fenced block in the prompt.",
		RequiredInputs: []types.ToolInput{
			{Name: "code", Type: "string", Description: "Code to execute; overrides any fenced block in the prompt", Required: false},
			{Name: "language", Type: "string", Description: "python, javascript, or bash (default python)", Required: false},
		},
		OutputShape: "Execution output with exit code",
	}
}

// Invoke extracts and runs the code.
func (t *CodeExecutor) Invoke(ctx context.Context, inv Invocation) (*Result, error) {
	code, lang := t.extract(inv)
	if code == "" {
		return nil, fmt.Errorf("no code to execute: provide a code input or a fenced block in the prompt")
	}

	req := &sandbox.Request{
		ID:       types.NewID("run"),
		Language: lang,
		Code:     code,
	}
	res, err := t.executor.Execute(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("sandbox execution: %w", err)
	}

	t.logger.Info("code executed",
		zap.String("run_id", req.ID),
		zap.String("language", string(lang)),
		zap.Bool("success", res.Success),
		zap.Int("exit_code", res.ExitCode))

	if !res.Success {
		detail := res.Error
		if detail == "" {
			detail = strings.TrimSpace(res.Stderr)
		}
		return nil, fmt.Errorf("code execution failed (exit %d): %s", res.ExitCode, detail)
	}

	output := strings.TrimSpace(res.Stdout)
	if output == "" {
		output = "(no output)"
	}
	return &Result{
		Output: output,
		SideEffects: []types.SideEffect{
			{Kind: types.SideEffectCodeRun,
				Detail: fmt.Sprintf("run %s (%s, exit %d, %s)", req.ID, lang, res.ExitCode, res.Duration)},
		},
	}, nil
}

func (t *CodeExecutor) extract(inv Invocation) (string, sandbox.Language) {
	lang := sandbox.LangPython
	if s, ok := stringInput(inv.Inputs, "language"); ok {
		lang = sandbox.Language(strings.ToLower(s))
	}

	if code, ok := stringInput(inv.Inputs, "code"); ok {
		return code, lang
	}

	if m := codeFenceRe.FindStringSubmatch(inv.Prompt); m != nil {
		if fenceLang := normalizeLang(m[1]); fenceLang != "" {
			lang = fenceLang
		}
		return strings.TrimSpace(m[2]), lang
	}
	return "", lang
}

func normalizeLang(s string) sandbox.Language {
	switch strings.ToLower(s) {
	case "python", "py":
		return sandbox.LangPython
	case "javascript", "js", "node":
		return sandbox.LangJavaScript
	case "bash", "sh", "shell":
		return sandbox.LangBash
	default:
		return ""
	}
}
