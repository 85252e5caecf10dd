package webhook

import (
	"fmt"

	"github.com/DeafMist/cybernews-relay/internal/models"
)

// Message is the JSON body accepted by Slack-style incoming webhooks.
type Message struct {
	Text string `json:"text"`
}

// Render formats an item as bold headline, excerpt and a "Read more" link.
func Render(item models.NewsItem) string {
	return fmt.Sprintf("*%s*\n%s\n<%s|Read more>", item.Headline, item.Excerpt, item.SourceURL)
}
