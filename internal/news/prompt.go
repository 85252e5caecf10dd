package news

import (
	"fmt"
	"strings"
)

// TrustedSources are the outlets the prompt asks the model to prefer.
var TrustedSources = []string{
	"Heise Security",
	"Krebs on Security",
	"The Hacker News",
	"ZDNet Cybersecurity",
	"SecurityWeek",
	"BleepingComputer",
	"Cybersecurity Insiders",
}

// BuildPrompt renders the query prompt for the given region.
func BuildPrompt(region string) string {
	return fmt.Sprintf(`Please provide the latest trending cybersecurity news relevant to companies operating in the %s.
Each item should include a headline, a short excerpt, and a link to the original source.
Focus on quality over speed. Use trusted sources like: %s.`, region, strings.Join(TrustedSources, ", "))
}

const chatSystemPrompt = "You are a helpful assistant summarizing cybersecurity news for businesses in the %s."

// BuildChatPrompt renders the user message for chat mode. Chat models return free text,
// so the message pins the answer down to a bare JSON array.
func BuildChatPrompt(region string, maxItems int) string {
	return fmt.Sprintf(`Please provide the latest trending cybersecurity news relevant to companies operating in the %s.
Use trusted sources like: %s.
Respond **only** with a JSON array of objects, no extra text or markdown. Each object contains:

- headline (string)
- excerpt (string)
- source_url (string)

Example:

[
  {
    "headline": "Title of news",
    "excerpt": "Short summary of news",
    "source_url": "https://link.to/article"
  }
]

Limit the response to %d items.`, region, strings.Join(TrustedSources, ", "), maxItems)
}
