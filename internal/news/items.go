package news

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/DeafMist/cybernews-relay/internal/models"
)

// decodeItems converts a JSON array into news items without validating them.
// Non-string field values keep their JSON text, missing or null fields are empty,
// and an element that is not an object becomes an empty item.
func decodeItems(raw json.RawMessage) ([]models.NewsItem, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("decode news items: %w", err)
	}

	items := make([]models.NewsItem, 0, len(elems))
	for _, elem := range elems {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(elem, &fields); err != nil || fields == nil {
			items = append(items, models.NewsItem{})
			continue
		}
		items = append(items, models.NewsItem{
			Headline:  fieldText(fields["headline"]),
			Excerpt:   fieldText(fields["excerpt"]),
			SourceURL: fieldText(fields["source_url"]),
		})
	}
	return items, nil
}

func fieldText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}
