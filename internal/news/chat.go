package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/DeafMist/cybernews-relay/internal/models"
)

// ChatClient asks an OpenAI-compatible chat completions endpoint for news and parses
// the JSON array in the answer.
type ChatClient struct {
	client *openai.Client
	model  openai.ChatModel
	region string
}

// NewChatClient points the OpenAI SDK at baseURL. Retries are disabled: a failed
// request ends the run.
func NewChatClient(baseURL, apiKey, model, region string, httpClient *http.Client) *ChatClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(withTrailingSlash(baseURL)),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	client := openai.NewClient(opts...)
	return &ChatClient{
		client: &client,
		model:  openai.ChatModel(model),
		region: region,
	}
}

func (c *ChatClient) Name() string {
	return "perplexity-chat"
}

// Fetch sends one chat completion request. An answer that is valid JSON but not an
// array yields an empty list.
func (c *ChatClient) Fetch(ctx context.Context, maxItems int) ([]models.NewsItem, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(fmt.Sprintf(chatSystemPrompt, c.region)),
			openai.UserMessage(BuildChatPrompt(c.region, maxItems)),
		},
		MaxTokens:   openai.Int(1000),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			if apiErr.Response != nil {
				return nil, NewStatusError("news api", apiErr.Response)
			}
			return nil, &StatusError{
				API:        "news api",
				StatusCode: apiErr.StatusCode,
				Reason:     http.StatusText(apiErr.StatusCode),
			}
		}
		return nil, fmt.Errorf("news chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return []models.NewsItem{}, nil
	}

	return decodeArray(cleanJSONArray(resp.Choices[0].Message.Content))
}

func decodeArray(content string) ([]models.NewsItem, error) {
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("decode news content: %w", err)
	}
	if !isArray(raw) {
		return []models.NewsItem{}, nil
	}

	return decodeItems(raw)
}

// cleanJSONArray strips markdown fences and any prose around the outermost array.
func cleanJSONArray(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)
	if json.Valid([]byte(content)) {
		return content
	}

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}

func withTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
