package vectorstore

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

	"github.com/floworc/floworc/types"
)

// Embedder converts text into dense vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	Dimensions() int
}

// OpenAIEmbedderConfig configures the OpenAI-compatible embedding client.
type OpenAIEmbedderConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint.
type OpenAIEmbedder struct {
	config OpenAIEmbedderConfig
	client *http.Client
	logger *zap.Logger
}

// NewOpenAIEmbedder creates an embedding client.
func NewOpenAIEmbedder(config OpenAIEmbedderConfig, logger *zap.Logger) *OpenAIEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Model == "" {
		config.Model = "text-embedding-3-small"
	}
	if config.Dimensions <= 0 {
		config.Dimensions = 1536
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &OpenAIEmbedder{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger.With(zap.String("component", "openai_embedder")),
	}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Embed returns one embedding per input text, in input order.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	body, err := json.Marshal(embeddingRequest{Model: e.config.Model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	url := strings.TrimSuffix(e.config.BaseURL, "/") + "/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.config.APIKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, types.NewError(types.ErrUpstreamTimeout, "embedding request timed out").
				WithCause(err).WithRetryable(true)
		}
		return nil, types.NewError(types.ErrUpstreamError, "embedding request failed").WithCause(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, types.NewError(types.ErrUpstreamError,
			fmt.Sprintf("malformed embedding response (status %d)", resp.StatusCode)).WithCause(err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("embedding request failed with status %d", resp.StatusCode)
		if parsed.Error != nil {
			msg = fmt.Sprintf("%s: %s", msg, parsed.Error.Message)
		}
		return nil, types.NewError(types.ErrUpstreamError, msg).
			WithHTTPStatus(resp.StatusCode).
			WithRetryable(resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500)
	}

	if len(parsed.Data) != len(texts) {
		return nil, types.NewError(types.ErrUpstreamError,
			fmt.Sprintf("embedding count mismatch: want %d, got %d", len(texts), len(parsed.Data)))
	}

	embeddings := make([][]float64, len(texts))
	for _, item := range parsed.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, types.NewError(types.ErrUpstreamError,
				fmt.Sprintf("embedding index %d out of range", item.Index))
		}
		embeddings[item.Index] = item.Embedding
	}

	e.logger.Debug("texts embedded", zap.Int("count", len(texts)))
	return embeddings, nil
}

// Dimensions returns the embedding dimensionality.
func (e *OpenAIEmbedder) Dimensions() int { return e.config.Dimensions }
