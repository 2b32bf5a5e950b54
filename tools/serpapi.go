package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/BaSui01/miniagents/types"
)

const serpapiDefaultBaseURL = "https://serpapi.com"

// SerpAPIBackend calls SerpApi's Google engine (engine-style search with
// organic results and an optional answer box).
type SerpAPIBackend struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewSerpAPIBackend constructs a SerpApi backend. A nil client gets a
// 10-second timeout default.
func NewSerpAPIBackend(apiKey string, client *http.Client) *SerpAPIBackend {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &SerpAPIBackend{apiKey: apiKey, baseURL: serpapiDefaultBaseURL, client: client}
}

// NewSerpAPIBackendWithBaseURL constructs a SerpApi backend against a
// custom endpoint. Used by tests.
func NewSerpAPIBackendWithBaseURL(apiKey, baseURL string, client *http.Client) *SerpAPIBackend {
	b := NewSerpAPIBackend(apiKey, client)
	b.baseURL = baseURL
	return b
}

// Name implements SearchBackend.
func (b *SerpAPIBackend) Name() string { return BackendSerpAPI }

type serpapiResponse struct {
	AnswerBox *struct {
		Answer  string `json:"answer"`
		Snippet string `json:"snippet"`
	} `json:"answer_box"`
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
}

// Search issues a Google engine query and normalizes the response:
// link maps to URL and snippet to Content.
func (b *SerpAPIBackend) Search(ctx context.Context, query string, opts SearchOptions) (*SearchPayload, error) {
	if b.apiKey == "" {
		return nil, types.NewError(types.ErrBackendUnavailable, "serpapi api key is not set")
	}

	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("api_key", b.apiKey)
	params.Set("hl", "en")
	params.Set("num", strconv.Itoa(opts.MaxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, types.NewError(types.ErrBackendError, "build serpapi request").WithCause(err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, types.NewError(types.ErrBackendError, "serpapi request failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewErrorf(types.ErrBackendError, "serpapi http %d", resp.StatusCode).WithHTTPStatus(resp.StatusCode)
	}

	var out serpapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, types.NewError(types.ErrBackendError, "decode serpapi response").WithCause(err)
	}

	answer := ""
	if out.AnswerBox != nil {
		answer = out.AnswerBox.Answer
		if answer == "" {
			answer = out.AnswerBox.Snippet
		}
	}

	results := make([]SearchResult, 0, len(out.OrganicResults))
	for _, item := range out.OrganicResults {
		if len(results) >= opts.MaxResults {
			break
		}
		raw := item.Snippet
		if opts.FetchFullPage {
			raw = limitText(raw, opts.MaxTokensPerSource)
		}
		title := item.Title
		if title == "" {
			title = item.Link
		}
		results = append(results, SearchResult{
			Title:      title,
			URL:        item.Link,
			Content:    item.Snippet,
			RawContent: raw,
		})
	}

	return &SearchPayload{
		Results: results,
		Backend: BackendSerpAPI,
		Answer:  answer,
		Notices: []string{},
	}, nil
}

var _ SearchBackend = (*SerpAPIBackend)(nil)
