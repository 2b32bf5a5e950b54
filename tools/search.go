package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/miniagents/types"
)

// Search backends.
const (
	BackendTavily  = "tavily"
	BackendSerpAPI = "serpapi"
	BackendHybrid  = "hybrid"
)

const (
	defaultMaxResults         = 5
	defaultMaxTokensPerSource = 2000
	// charsPerToken is the average number of characters per token used
	// for source truncation.
	charsPerToken = 4
)

// SearchResult is the normalized shape every backend maps into.
type SearchResult struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Content    string `json:"content"`
	RawContent string `json:"raw_content,omitempty"`
}

// SearchPayload is the result of one search call: normalized results, the
// backend that produced them, an optional direct answer, and any warnings
// accumulated along the way.
type SearchPayload struct {
	Results []SearchResult `json:"results"`
	Backend string         `json:"backend"`
	Answer  string         `json:"answer,omitempty"`
	Notices []string       `json:"notices"`
}

// SearchOptions configures one backend call.
type SearchOptions struct {
	MaxResults         int
	FetchFullPage      bool
	MaxTokensPerSource int
}

// DefaultSearchOptions returns the defaults the tool applies when the
// caller leaves options unset.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		MaxResults:         defaultMaxResults,
		MaxTokensPerSource: defaultMaxTokensPerSource,
	}
}

// SearchBackend is one external search provider normalizing its responses
// into SearchPayload.
type SearchBackend interface {
	Search(ctx context.Context, query string, opts SearchOptions) (*SearchPayload, error)
	Name() string
}

// SearchConfig configures the search tool.
type SearchConfig struct {
	// Backend is the instance default: tavily, serpapi, or hybrid.
	Backend string
	// TavilyAPIKey falls back to the TAVILY_API_KEY environment variable.
	TavilyAPIKey string
	// SerpAPIKey falls back to the SERPAPI_API_KEY environment variable.
	SerpAPIKey string
	// HTTPClient is shared by the backend clients when set.
	HTTPClient *http.Client
}

// SearchTool queries one or more external search backends and normalizes
// their heterogeneous responses into one result shape. In hybrid mode it
// falls over between backends in priority order: the first backend to
// yield a non-empty result set wins.
type SearchTool struct {
	defaultBackend string
	backends       []SearchBackend // priority order
	logger         *zap.Logger
}

// NewSearchTool builds a search tool from config, initializing a backend
// client for every credential that is present. A configured default
// backend that is unsupported or unavailable degrades to hybrid.
func NewSearchTool(cfg SearchConfig, logger *zap.Logger) *SearchTool {
	if logger == nil {
		logger = zap.NewNop()
	}

	tavilyKey := cfg.TavilyAPIKey
	if tavilyKey == "" {
		tavilyKey = os.Getenv("TAVILY_API_KEY")
	}
	serpKey := cfg.SerpAPIKey
	if serpKey == "" {
		serpKey = os.Getenv("SERPAPI_API_KEY")
	}

	var backends []SearchBackend
	if tavilyKey != "" {
		backends = append(backends, NewTavilyBackend(tavilyKey, cfg.HTTPClient))
	}
	if serpKey != "" {
		backends = append(backends, NewSerpAPIBackend(serpKey, cfg.HTTPClient))
	}

	t := NewSearchToolWithBackends(cfg.Backend, logger, backends...)
	if len(backends) == 0 {
		logger.Warn("no search backends available; search tool will not return results")
	}
	return t
}

// NewSearchToolWithBackends builds a search tool over explicit backends
// in priority order. Used by tests and callers with custom providers.
func NewSearchToolWithBackends(defaultBackend string, logger *zap.Logger, backends ...SearchBackend) *SearchTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &SearchTool{
		defaultBackend: strings.ToLower(defaultBackend),
		backends:       backends,
		logger:         logger,
	}
	if !t.supported(t.defaultBackend) {
		if t.defaultBackend != "" {
			logger.Warn("unsupported default backend; falling back to hybrid",
				zap.String("backend", t.defaultBackend))
		}
		t.defaultBackend = BackendHybrid
	}
	if t.defaultBackend != BackendHybrid && t.find(t.defaultBackend) == nil {
		logger.Warn("default backend not available; falling back to hybrid",
			zap.String("backend", t.defaultBackend))
		t.defaultBackend = BackendHybrid
	}
	return t
}

func (t *SearchTool) supported(backend string) bool {
	switch backend {
	case BackendHybrid:
		return true
	}
	return t.find(backend) != nil
}

func (t *SearchTool) find(name string) SearchBackend {
	for _, b := range t.backends {
		if b.Name() == name {
			return b
		}
	}
	return nil
}

// Name implements Tool.
func (t *SearchTool) Name() string { return "search" }

// Description implements Tool.
func (t *SearchTool) Description() string {
	return "Search for information on the internet using a search engine."
}

// Parameters implements Tool.
func (t *SearchTool) Parameters() []ToolParameter {
	return []ToolParameter{
		{Name: "query", Type: "string", Description: "The search query to use.", Required: true},
		{Name: "backend", Type: "string", Description: "Backend to use: tavily, serpapi, or hybrid.", Required: false},
		{Name: "mode", Type: "string", Description: "Return mode: text or structured.", Required: false, Default: "text"},
		{Name: "max_results", Type: "integer", Description: "Maximum number of results.", Required: false, Default: defaultMaxResults},
	}
}

// Run implements Tool. An unrecognized mode defaults to text; an
// unrecognized backend defaults to the instance backend. Structured mode
// (structured/dict/json) returns the JSON-encoded payload.
func (t *SearchTool) Run(ctx context.Context, params map[string]any) (string, error) {
	query := strings.TrimSpace(stringParam(params, "query", "input"))
	if query == "" {
		return "", types.NewError(types.ErrInvalidRequest, "no search query provided")
	}

	backend := strings.ToLower(stringParam(params, "backend"))
	if !t.supported(backend) {
		backend = t.defaultBackend
	}

	mode := strings.ToLower(stringParam(params, "mode", "return_mode"))
	switch mode {
	case "text", "structured", "dict", "json":
	default:
		mode = "text"
	}

	opts := SearchOptions{
		MaxResults:         intParam(params, "max_results", defaultMaxResults),
		FetchFullPage:      boolParam(params, "fetch_full_page"),
		MaxTokensPerSource: intParam(params, "max_tokens_per_source", defaultMaxTokensPerSource),
	}

	payload, err := t.StructuredSearch(ctx, query, backend, opts)
	if err != nil {
		return "", err
	}

	if mode != "text" {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return "", types.NewError(types.ErrUpstreamError, "encode search payload").WithCause(err)
		}
		return string(encoded), nil
	}
	return t.renderText(query, payload), nil
}

// StructuredSearch runs one search and returns the typed payload. A named
// backend that is not initialized is a backend-unavailable error; in
// hybrid mode backend failures become notices and the fallback chain
// continues.
func (t *SearchTool) StructuredSearch(ctx context.Context, query, backend string, opts SearchOptions) (*SearchPayload, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = defaultMaxResults
	}
	if opts.MaxTokensPerSource <= 0 {
		opts.MaxTokensPerSource = defaultMaxTokensPerSource
	}

	switch backend {
	case "", BackendHybrid:
		return t.searchHybrid(ctx, query, opts), nil
	default:
		b := t.find(backend)
		if b == nil {
			return nil, types.NewErrorf(types.ErrBackendUnavailable, "search backend %q is not available", backend)
		}
		return b.Search(ctx, query, opts)
	}
}

// searchHybrid tries each backend in priority order. The first backend to
// return at least one result wins and carries the notices accumulated
// from earlier backends; an error is converted to a notice and the chain
// continues. With no winner, the empty payload carries every notice.
func (t *SearchTool) searchHybrid(ctx context.Context, query string, opts SearchOptions) *SearchPayload {
	var notices []string

	for _, b := range t.backends {
		payload, err := b.Search(ctx, query, opts)
		if err != nil {
			t.logger.Warn("search backend failed",
				zap.String("backend", b.Name()),
				zap.Error(err))
			notices = append(notices, fmt.Sprintf("%s search failed: %v", b.Name(), err))
			continue
		}
		if len(payload.Results) > 0 {
			payload.Notices = append(notices, payload.Notices...)
			return payload
		}
		notices = append(notices, fmt.Sprintf("%s returned no results; trying other search sources", b.Name()))
	}

	return &SearchPayload{
		Results: []SearchResult{},
		Backend: BackendHybrid,
		Notices: notices,
	}
}

// renderText assembles the presentational text form of a payload.
func (t *SearchTool) renderText(query string, payload *SearchPayload) string {
	lines := []string{
		fmt.Sprintf("Search query: %s", query),
		fmt.Sprintf("Backend: %s", payload.Backend),
	}
	if payload.Answer != "" {
		lines = append(lines, fmt.Sprintf("Direct answer: %s", payload.Answer))
	}

	if len(payload.Results) > 0 {
		lines = append(lines, "", "References:")
		for i, r := range payload.Results {
			title := r.Title
			if title == "" {
				title = r.URL
			}
			lines = append(lines, fmt.Sprintf("[%d] %s", i+1, title))
			if r.Content != "" {
				lines = append(lines, "    "+r.Content)
			}
			if r.URL != "" {
				lines = append(lines, "    Source: "+r.URL)
			}
			lines = append(lines, "")
		}
	} else {
		lines = append(lines, "No relevant search results found.")
	}

	if len(payload.Notices) > 0 {
		lines = append(lines, "Notices:")
		for _, n := range payload.Notices {
			if n != "" {
				lines = append(lines, "- "+n)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// limitText truncates text to roughly tokenLimit tokens.
func limitText(text string, tokenLimit int) string {
	charLimit := tokenLimit * charsPerToken
	if len(text) <= charLimit {
		return text
	}
	return text[:charLimit] + "... [truncated]"
}

func intParam(params map[string]any, key string, fallback int) int {
	v, ok := params[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolParam(params map[string]any, key string) bool {
	v, ok := params[key]
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(b)
		return err == nil && parsed
	}
	return false
}
