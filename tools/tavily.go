package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/BaSui01/miniagents/types"
)

const tavilyDefaultBaseURL = "https://api.tavily.com"

// TavilyBackend calls the Tavily search API (document-style search with
// an optional direct answer).
type TavilyBackend struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewTavilyBackend constructs a Tavily backend. A nil client gets a
// 10-second timeout default.
func NewTavilyBackend(apiKey string, client *http.Client) *TavilyBackend {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &TavilyBackend{apiKey: apiKey, baseURL: tavilyDefaultBaseURL, client: client}
}

// NewTavilyBackendWithBaseURL constructs a Tavily backend against a
// custom endpoint. Used by tests.
func NewTavilyBackendWithBaseURL(apiKey, baseURL string, client *http.Client) *TavilyBackend {
	b := NewTavilyBackend(apiKey, client)
	b.baseURL = baseURL
	return b
}

// Name implements SearchBackend.
func (b *TavilyBackend) Name() string { return BackendTavily }

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title      string `json:"title"`
		URL        string `json:"url"`
		Content    string `json:"content"`
		RawContent string `json:"raw_content"`
	} `json:"results"`
}

// Search posts a query to Tavily and normalizes the response.
func (b *TavilyBackend) Search(ctx context.Context, query string, opts SearchOptions) (*SearchPayload, error) {
	if b.apiKey == "" {
		return nil, types.NewError(types.ErrBackendUnavailable, "tavily api key is not set")
	}

	body := map[string]any{
		"api_key":             b.apiKey,
		"query":               query,
		"max_results":         opts.MaxResults,
		"include_answer":      true,
		"include_raw_content": opts.FetchFullPage,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, types.NewError(types.ErrBackendError, "encode tavily request").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, types.NewError(types.ErrBackendError, "build tavily request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, types.NewError(types.ErrBackendError, "tavily request failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewErrorf(types.ErrBackendError, "tavily http %d", resp.StatusCode).WithHTTPStatus(resp.StatusCode)
	}

	var out tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, types.NewError(types.ErrBackendError, "decode tavily response").WithCause(err)
	}

	results := make([]SearchResult, 0, len(out.Results))
	for _, item := range out.Results {
		if len(results) >= opts.MaxResults {
			break
		}
		raw := item.Content
		if opts.FetchFullPage {
			raw = limitText(item.RawContent, opts.MaxTokensPerSource)
		}
		title := item.Title
		if title == "" {
			title = item.URL
		}
		results = append(results, SearchResult{
			Title:      title,
			URL:        item.URL,
			Content:    item.Content,
			RawContent: raw,
		})
	}

	return &SearchPayload{
		Results: results,
		Backend: BackendTavily,
		Answer:  out.Answer,
		Notices: []string{},
	}, nil
}

var _ SearchBackend = (*TavilyBackend)(nil)
