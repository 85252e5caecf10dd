package news

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/DeafMist/cybernews-relay/internal/models"
)

// QueryClient talks to the prompt/max_results style query endpoint.
type QueryClient struct {
	url        string
	apiKey     string
	model      string
	region     string
	httpClient *http.Client
}

// NewQueryClient returns a QueryClient. A nil httpClient falls back to http.DefaultClient.
func NewQueryClient(url, apiKey, model, region string, httpClient *http.Client) *QueryClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &QueryClient{
		url:        url,
		apiKey:     apiKey,
		model:      model,
		region:     region,
		httpClient: httpClient,
	}
}

func (c *QueryClient) Name() string {
	return "perplexity-query"
}

type queryRequest struct {
	Model      string `json:"model"`
	Prompt     string `json:"prompt"`
	MaxResults int    `json:"max_results"`
}

// Fetch issues a single query and returns the items under "results".
// A response without a results array yields an empty list.
func (c *QueryClient) Fetch(ctx context.Context, maxItems int) ([]models.NewsItem, error) {
	payload, err := json.Marshal(queryRequest{
		Model:      c.model,
		Prompt:     BuildPrompt(c.region),
		MaxResults: maxItems,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal news query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build news request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news fetch: %w", err)
	}
	defer resp.Body.Close()

	if !IsSuccess(resp.StatusCode) {
		return nil, NewStatusError("news api", resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read news response: %w", err)
	}

	return decodeResults(body)
}

func decodeResults(body []byte) ([]models.NewsItem, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode news response: %w", err)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		// Valid JSON that is not an object has no results field.
		return []models.NewsItem{}, nil
	}

	results, ok := envelope["results"]
	if !ok || !isArray(results) {
		return []models.NewsItem{}, nil
	}

	return decodeItems(results)
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
