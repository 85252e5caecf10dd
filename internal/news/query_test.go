package news

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/cybernews-relay/internal/config"
	"github.com/DeafMist/cybernews-relay/internal/models"
)

func TestQueryFetch(t *testing.T) {
	var got queryRequest
	var auth, contentType, method string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		auth = r.Header.Get("Authorization")
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"headline":"Ransomware hits Swiss utility","excerpt":"Operations disrupted.","source_url":"https://example.com/a"},
			{"headline":"BSI warns of Exchange flaw","excerpt":"Patch now.","source_url":"https://example.com/b"}
		]}`))
	}))
	defer srv.Close()

	client := NewQueryClient(srv.URL, "test-key", "perplexity-advanced-v1", config.DefaultRegion, srv.Client())
	items, err := client.Fetch(context.Background(), 3)

	require.NoError(t, err)
	require.Equal(t, http.MethodPost, method)
	require.Equal(t, "Bearer test-key", auth)
	require.Equal(t, "application/json", contentType)
	require.Equal(t, "perplexity-advanced-v1", got.Model)
	require.Equal(t, 3, got.MaxResults)
	require.Contains(t, got.Prompt, "Krebs on Security")
	require.Contains(t, got.Prompt, config.DefaultRegion)

	require.Equal(t, []models.NewsItem{
		{Headline: "Ransomware hits Swiss utility", Excerpt: "Operations disrupted.", SourceURL: "https://example.com/a"},
		{Headline: "BSI warns of Exchange flaw", Excerpt: "Patch now.", SourceURL: "https://example.com/b"},
	}, items)
}

func TestQueryFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewQueryClient(srv.URL, "k", "m", "r", srv.Client())
	items, err := client.Fetch(context.Background(), 5)

	require.Nil(t, items)
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
	require.Contains(t, err.Error(), "Too Many Requests")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}

func TestQueryFetchMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [`))
	}))
	defer srv.Close()

	client := NewQueryClient(srv.URL, "k", "m", "r", srv.Client())
	_, err := client.Fetch(context.Background(), 5)

	require.ErrorContains(t, err, "decode news response")
}

func TestQueryFetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewQueryClient(url, "k", "m", "r", nil)
	_, err := client.Fetch(context.Background(), 5)

	require.ErrorContains(t, err, "news fetch")
}

func TestDecodeResultsShapeTolerance(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing results", body: `{"answer":"nothing"}`},
		{name: "results object", body: `{"results":{"headline":"x"}}`},
		{name: "results string", body: `{"results":"none"}`},
		{name: "results null", body: `{"results":null}`},
		{name: "top level array", body: `[{"headline":"x"}]`},
		{name: "top level string", body: `"hello"`},
		{name: "empty results", body: `{"results":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := decodeResults([]byte(tt.body))
			require.NoError(t, err)
			require.NotNil(t, items)
			require.Empty(t, items)
		})
	}
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{API: "webhook", StatusCode: 404, Reason: "Not Found"}
	require.Equal(t, "webhook error: 404 Not Found", err.Error())
}

func TestNewSelectsClient(t *testing.T) {
	cfg := &config.Relay{Mode: config.ModeQuery, NewsAPIURL: "http://x", APIKey: "k"}
	require.IsType(t, &QueryClient{}, New(cfg, nil))

	cfg.Mode = config.ModeChat
	require.IsType(t, &ChatClient{}, New(cfg, nil))
}

func TestDecodeResultsKeepsItemsWithUnexpectedTypes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []models.NewsItem
	}{
		{
			name: "numeric headline",
			body: `{"results":[
				{"headline":"Good","excerpt":"fine","source_url":"http://a"},
				{"headline":2024,"excerpt":"year","source_url":"http://b"}
			]}`,
			want: []models.NewsItem{
				{Headline: "Good", Excerpt: "fine", SourceURL: "http://a"},
				{Headline: "2024", Excerpt: "year", SourceURL: "http://b"},
			},
		},
		{
			name: "non-object element",
			body: `{"results":["just a string",{"headline":"Good","excerpt":"fine","source_url":"http://a"}]}`,
			want: []models.NewsItem{
				{},
				{Headline: "Good", Excerpt: "fine", SourceURL: "http://a"},
			},
		},
		{
			name: "missing and null fields",
			body: `{"results":[{"headline":"Only headline","excerpt":null}]}`,
			want: []models.NewsItem{{Headline: "Only headline"}},
		},
		{
			name: "bool and object values",
			body: `{"results":[{"headline":true,"excerpt":{"a":1},"source_url":"http://c"}]}`,
			want: []models.NewsItem{{Headline: "true", Excerpt: `{"a":1}`, SourceURL: "http://c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := decodeResults([]byte(tt.body))
			require.NoError(t, err)
			require.Equal(t, tt.want, items)
		})
	}
}

func TestQueryFetchStatusReasonFromServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(599)
	}))
	defer srv.Close()

	_, err := NewQueryClient(srv.URL, "k", "m", "r", srv.Client()).Fetch(context.Background(), 5)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, 599, statusErr.StatusCode)
	require.Equal(t, "status code 599", statusErr.Reason)
}
