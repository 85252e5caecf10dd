package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/DeafMist/cybernews-relay/internal/models"
	"github.com/DeafMist/cybernews-relay/internal/news"
)

// Poster sends news items to a chat webhook, one request per item.
type Poster struct {
	url        string
	httpClient *http.Client
}

// NewPoster returns a Poster for url. A nil httpClient falls back to http.DefaultClient.
func NewPoster(url string, httpClient *http.Client) *Poster {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Poster{url: url, httpClient: httpClient}
}

// Post sends items in order and stops at the first failure. Items after the
// failing one are not sent.
func (p *Poster) Post(ctx context.Context, items []models.NewsItem) error {
	for _, item := range items {
		if err := p.send(ctx, Message{Text: Render(item)}); err != nil {
			return err
		}
	}
	return nil
}

func (p *Poster) send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal webhook message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if !news.IsSuccess(resp.StatusCode) {
		return news.NewStatusError("webhook", resp)
	}
	return nil
}
