package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/floworc/floworc/types"
)

// SearchHit is one web search result.
type SearchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchProvider abstracts the search backend. Implementations can wrap
// SerpAPI, Tavily, Bing, or any HTTP search API.
type SearchProvider interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchHit, error)
	Name() string
}

// WebSearch queries a search provider with the rendered prompt.
type WebSearch struct {
	provider   SearchProvider
	maxResults int
	logger     *zap.Logger
}

// NewWebSearch creates the web_search tool.
func NewWebSearch(provider SearchProvider, maxResults int, logger *zap.Logger) *WebSearch {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	return &WebSearch{
		provider:   provider,
		maxResults: maxResults,
		logger:     logger.With(zap.String("tool", "web_search")),
	}
}

// Contract describes the tool to the planner.
func (t *WebSearch) Contract() types.ToolContract {
	return types.ToolContract{
		Name:        "web_search",
		Description: "Searches the web for the prompt text and returns titles, URLs, and snippets of the best matches.",
		OutputShape: "Numbered list of search results",
	}
}

// Invoke runs the search.
func (t *WebSearch) Invoke(ctx context.Context, inv Invocation) (*Result, error) {
	if t.provider == nil {
		return nil, fmt.Errorf("web search provider not configured")
	}
	query := strings.TrimSpace(inv.Prompt)
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}

	hits, err := t.provider.Search(ctx, query, t.maxResults)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}

	t.logger.Info("web search completed",
		zap.String("provider", t.provider.Name()),
		zap.Int("results", len(hits)))

	var b strings.Builder
	if len(hits) == 0 {
		b.WriteString("No results found.")
	}
	for i, hit := range hits {
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n", i+1, hit.Title, hit.URL, hit.Snippet)
	}
	return &Result{
		Output: strings.TrimRight(b.String(), "\n"),
		SideEffects: []types.SideEffect{
			{Kind: types.SideEffectWebSearch,
				Detail: fmt.Sprintf("%d results from %s", len(hits), t.provider.Name())},
		},
	}, nil
}

// HTTPSearchProvider calls a JSON search endpoint of the form
// GET {base}?q=<query>&max=<n> returning {"results":[{title,url,snippet}]}.
type HTTPSearchProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPSearchProvider creates a provider over a generic search API.
func NewHTTPSearchProvider(baseURL, apiKey string, timeout time.Duration) *HTTPSearchProvider {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSearchProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name.
func (p *HTTPSearchProvider) Name() string { return "http" }

// Search performs the search request.
func (p *HTTPSearchProvider) Search(ctx context.Context, query string, maxResults int) ([]SearchHit, error) {
	u := fmt.Sprintf("%s?q=%s&max=%d", strings.TrimSuffix(p.baseURL, "/"), url.QueryEscape(query), maxResults)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "search request failed").WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, types.NewError(types.ErrUpstreamError,
			fmt.Sprintf("search request failed with status %d", resp.StatusCode)).
			WithHTTPStatus(resp.StatusCode).
			WithRetryable(resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500)
	}

	var parsed struct {
		Results []SearchHit `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "malformed search response").WithCause(err)
	}
	return parsed.Results, nil
}
