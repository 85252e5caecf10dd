package models

// NewsItem is one headline/excerpt/link record returned by the news API.
type NewsItem struct {
	Headline  string `json:"headline"`
	Excerpt   string `json:"excerpt"`
	SourceURL string `json:"source_url"`
}
