package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/floworc/floworc/types"
)

// OpenAIConfig configures the OpenAI-compatible chat client.
type OpenAIConfig struct {
	BaseURL string        `json:"base_url" yaml:"base_url"`
	APIKey  string        `json:"api_key" yaml:"api_key"`
	Model   string        `json:"model" yaml:"model"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// RequestsPerMinute bounds the outbound call rate; 0 disables limiting.
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute"`
}

// OpenAIClient is a ChatClient speaking the OpenAI chat completions
// protocol. It works against any compatible endpoint.
type OpenAIClient struct {
	config  OpenAIConfig
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewOpenAIClient creates a rate-limited chat client.
func NewOpenAIClient(config OpenAIConfig, logger *zap.Logger) *OpenAIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	var limiter *rate.Limiter
	if config.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(config.RequestsPerMinute)/60.0), 1)
	}
	return &OpenAIClient{
		config:  config,
		http:    &http.Client{Timeout: config.Timeout},
		limiter: limiter,
		logger:  logger.With(zap.String("component", "chat_client")),
	}
}

type chatCompletionRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float32       `json:"temperature,omitempty"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends one chat completion request and returns the assistant
// message content.
func (c *OpenAIClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", types.NewError(types.ErrUpstreamTimeout, "rate limiter wait aborted").WithCause(err)
		}
	}

	body := chatCompletionRequest{
		Model:       c.config.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.User})
	if req.JSONOnly {
		body.ResponseFormat = &respFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", types.NewError(types.ErrInternalError, "encode chat request").WithCause(err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", types.NewError(types.ErrInternalError, "build chat request").WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", types.NewError(types.ErrUpstreamTimeout, "chat completion timed out").WithCause(err).WithRetryable(true)
		}
		return "", types.NewError(types.ErrUpstreamError, "chat completion request failed").WithCause(err).WithRetryable(true)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", types.NewError(types.ErrUpstreamError, "read chat completion response").WithCause(err)
	}

	c.logger.Debug("chat completion finished",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	var parsed chatCompletionResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", types.NewError(types.ErrUpstreamError,
			fmt.Sprintf("unparseable chat completion response (status %d)", resp.StatusCode)).WithCause(err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("chat completion returned status %d", resp.StatusCode)
		if parsed.Error != nil {
			msg = fmt.Sprintf("%s: %s", msg, parsed.Error.Message)
		}
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", types.NewError(types.ErrUpstreamError, msg).WithRetryable(retryable)
	}
	if len(parsed.Choices) == 0 {
		return "", types.NewError(types.ErrUpstreamError, "chat completion returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
