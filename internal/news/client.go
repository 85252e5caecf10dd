package news

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/DeafMist/cybernews-relay/internal/config"
	"github.com/DeafMist/cybernews-relay/internal/models"
)

// Fetcher returns up to maxItems recent news items.
type Fetcher interface {
	Fetch(ctx context.Context, maxItems int) ([]models.NewsItem, error)
	Name() string
}

// StatusError is returned when an upstream API answers with a non-2xx status.
type StatusError struct {
	API        string
	StatusCode int
	Reason     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error: %d %s", e.API, e.StatusCode, e.Reason)
}

// NewStatusError builds a StatusError from a response, keeping the reason phrase the server sent.
func NewStatusError(api string, resp *http.Response) *StatusError {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return &StatusError{API: api, StatusCode: resp.StatusCode, Reason: reason}
}

// IsSuccess reports whether the status code is in the 2xx range.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}

// New selects the fetcher for the configured API mode.
func New(cfg *config.Relay, httpClient *http.Client) Fetcher {
	if cfg.Mode == config.ModeChat {
		return NewChatClient(cfg.NewsAPIURL, cfg.APIKey, cfg.NewsModel, cfg.Region, httpClient)
	}
	return NewQueryClient(cfg.NewsAPIURL, cfg.APIKey, cfg.NewsModel, cfg.Region, httpClient)
}
