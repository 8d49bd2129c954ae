package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DockerBackend executes code through the Docker CLI with resource and
// privilege restrictions.
type DockerBackend struct {
	images          map[Language]string
	containerPrefix string
	logger          *zap.Logger
	mu              sync.Mutex
	active          map[string]struct{}
}

// NewDockerBackend creates a docker backend with default images.
func NewDockerBackend(logger *zap.Logger) *DockerBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DockerBackend{
		images: map[Language]string{
			LangPython:     "python:3.12-slim",
			LangJavaScript: "node:20-slim",
			LangBash:       "alpine:latest",
		},
		containerPrefix: "floworc_sbx_",
		logger:          logger.With(zap.String("component", "docker_backend")),
		active:          make(map[string]struct{}),
	}
}

// Name returns the backend name.
func (d *DockerBackend) Name() string { return "docker" }

// Execute runs code in a throwaway container.
func (d *DockerBackend) Execute(ctx context.Context, req *Request, config Config) (*Result, error) {
	start := time.Now()
	result := &Result{ID: req.ID, ExitCode: -1}

	image, ok := d.images[req.Language]
	if !ok {
		result.Error = fmt.Sprintf("no image configured for language: %s", req.Language)
		return result, nil
	}

	containerName := fmt.Sprintf("%s%s_%d", d.containerPrefix, sanitizeID(req.ID), time.Now().UnixNano())

	tempDir, err := os.MkdirTemp("", "floworc_sbx_")
	if err != nil {
		result.Error = fmt.Sprintf("failed to create temp dir: %v", err)
		return result, nil
	}
	defer os.RemoveAll(tempDir)

	codeFile := codeFilename(req.Language)
	if err := os.WriteFile(filepath.Join(tempDir, codeFile), []byte(req.Code), 0o644); err != nil {
		result.Error = fmt.Sprintf("failed to write code file: %v", err)
		return result, nil
	}

	args := d.buildArgs(containerName, image, tempDir, codeFile, req, config)

	d.logger.Debug("executing docker command",
		zap.String("container", containerName),
		zap.String("image", image))

	d.mu.Lock()
	d.active[containerName] = struct{}{}
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		delete(d.active, containerName)
		d.mu.Unlock()
		d.forceRemove(containerName)
	}()

	cmd := exec.CommandContext(ctx, "docker", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if req.Stdin != "" {
		cmd.Stdin = strings.NewReader(req.Stdin)
	}

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
			d.forceKill(containerName)
		} else if exitErr, ok := err.(*exec.ExitError); ok {
			// Non-zero exit is not necessarily an error
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.Error = err.Error()
		}
	}

	result.Success = result.ExitCode == 0 && result.Error == ""
	return result, nil
}

func (d *DockerBackend) buildArgs(containerName, image, tempDir, codeFile string, req *Request, config Config) []string {
	args := []string{"run", "--name", containerName, "--rm"}

	if config.MaxMemoryMB > 0 {
		args = append(args,
			"--memory", fmt.Sprintf("%dm", config.MaxMemoryMB),
			"--memory-swap", fmt.Sprintf("%dm", config.MaxMemoryMB))
	}
	if config.MaxCPUPercent > 0 {
		args = append(args, "--cpus", fmt.Sprintf("%.2f", float64(config.MaxCPUPercent)/100.0))
	}
	if !config.NetworkEnabled {
		args = append(args, "--network", "none")
	}

	args = append(args,
		"--security-opt", "no-new-privileges",
		"--cap-drop", "ALL",
		"--pids-limit", "100",
	)

	args = append(args, "-v", fmt.Sprintf("%s:/code:ro", tempDir), "-w", "/code")

	for k, v := range config.EnvVars {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
	}
	for k, v := range req.EnvVars {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
	}

	args = append(args, image)
	args = append(args, runCommand(req.Language, codeFile)...)
	return args
}

func (d *DockerBackend) forceKill(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exec.CommandContext(ctx, "docker", "kill", name).Run()
	d.logger.Debug("killed container", zap.String("name", name))
}

func (d *DockerBackend) forceRemove(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	exec.CommandContext(ctx, "docker", "rm", "-f", name).Run()
}

func codeFilename(lang Language) string {
	switch lang {
	case LangPython:
		return "main.py"
	case LangJavaScript:
		return "main.js"
	case LangBash:
		return "script.sh"
	default:
		return "code.txt"
	}
}

func runCommand(lang Language, codeFile string) []string {
	switch lang {
	case LangPython:
		return []string{"python3", codeFile}
	case LangJavaScript:
		return []string{"node", codeFile}
	case LangBash:
		return []string{"sh", codeFile}
	default:
		return []string{"cat", codeFile}
	}
}

func sanitizeID(id string) string {
	var b strings.Builder
	for _, c := range id {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-' {
			b.WriteRune(c)
		}
	}
	s := b.String()
	if len(s) > 32 {
		s = s[:32]
	}
	return s
}
