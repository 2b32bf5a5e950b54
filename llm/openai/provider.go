// Package openai implements the llm.Provider contract against any
// OpenAI-compatible chat completions endpoint (OpenAI itself, DashScope,
// DeepSeek, vLLM, and the like). The endpoint, key, and model are taken
// from llm.ClientConfig; missing credentials fail at construction.
package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/miniagents/llm"
	"github.com/BaSui01/miniagents/types"
)

// Provider is an OpenAI-compatible chat completion provider.
type Provider struct {
	cfg    llm.ClientConfig
	client *http.Client
	logger *zap.Logger
}

// NewProvider creates a provider from the given config. Missing model,
// API key, or base URL is a configuration error, fatal at construction.
func NewProvider(cfg llm.ClientConfig, logger *zap.Logger) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "openai-compat" }

// --- OpenAI wire types ---

type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []types.WireMessage `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float32             `json:"temperature,omitempty"`
	TopP        float32             `json:"top_p,omitempty"`
	Stop        []string            `json:"stop,omitempty"`
	Stream      bool                `json:"stream,omitempty"`
}

type chatCompletionChoice struct {
	Index        int    `json:"index"`
	FinishReason string `json:"finish_reason"`
	Message      struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Delta *struct {
		Content string `json:"content"`
	} `json:"delta,omitempty"`
}

type chatCompletionResponse struct {
	ID      string                 `json:"id"`
	Model   string                 `json:"model"`
	Choices []chatCompletionChoice `json:"choices"`
	Created int64                  `json:"created,omitempty"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (p *Provider) buildRequest(req *llm.ChatRequest, stream bool) chatCompletionRequest {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.cfg.Temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.cfg.MaxTokens
	}
	return chatCompletionRequest{
		Model:       model,
		Messages:    types.WireMessages(req.Messages),
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        req.TopP,
		Stop:        req.Stop,
		Stream:      stream,
	}
}

func (p *Provider) post(ctx context.Context, body chatCompletionRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRequest, "encode request").WithCause(err).WithProvider(p.Name())
	}
	endpoint := fmt.Sprintf("%s/chat/completions", strings.TrimRight(p.cfg.BaseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, types.NewError(types.ErrInvalidRequest, "build request").WithCause(err).WithProvider(p.Name())
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, err.Error()).
			WithHTTPStatus(http.StatusBadGateway).
			WithRetryable(true).
			WithProvider(p.Name())
	}
	return resp, nil
}

func (p *Provider) mapStatus(status int, msg string) *types.Error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return types.NewError(types.ErrUnauthorized, msg).WithHTTPStatus(status).WithProvider(p.Name())
	case http.StatusTooManyRequests:
		return types.NewError(types.ErrRateLimited, msg).WithHTTPStatus(status).WithRetryable(true).WithProvider(p.Name())
	case http.StatusBadRequest:
		return types.NewError(types.ErrInvalidRequest, msg).WithHTTPStatus(status).WithProvider(p.Name())
	case http.StatusGatewayTimeout:
		return types.NewError(types.ErrUpstreamTimeout, msg).WithHTTPStatus(status).WithRetryable(true).WithProvider(p.Name())
	default:
		return types.NewError(types.ErrUpstreamError, msg).WithHTTPStatus(status).WithRetryable(status >= 500).WithProvider(p.Name())
	}
}

func readErrMsg(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 4096))
	var er errorResponse
	if err := json.Unmarshal(data, &er); err == nil && er.Error.Message != "" {
		return er.Error.Message
	}
	return strings.TrimSpace(string(data))
}

// Completion issues a synchronous chat request.
func (p *Provider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	start := time.Now()
	resp, err := p.post(ctx, p.buildRequest(req, false))
	if err != nil {
		observeRequest(p.Name(), "completion", time.Since(start), err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		mapped := p.mapStatus(resp.StatusCode, readErrMsg(resp.Body))
		observeRequest(p.Name(), "completion", time.Since(start), mapped)
		return nil, mapped
	}

	var out chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		mapped := types.NewError(types.ErrUpstreamError, "decode response").WithCause(err).WithProvider(p.Name())
		observeRequest(p.Name(), "completion", time.Since(start), mapped)
		return nil, mapped
	}
	if len(out.Choices) == 0 {
		mapped := types.NewError(types.ErrUpstreamError, "response has no choices").WithProvider(p.Name())
		observeRequest(p.Name(), "completion", time.Since(start), mapped)
		return nil, mapped
	}

	observeRequest(p.Name(), "completion", time.Since(start), nil)
	p.logger.Debug("completion finished",
		zap.String("trace_id", req.TraceID),
		zap.String("model", out.Model),
		zap.Duration("latency", time.Since(start)))

	chat := &llm.ChatResponse{
		ID:           out.ID,
		Provider:     p.Name(),
		Model:        out.Model,
		Content:      out.Choices[0].Message.Content,
		FinishReason: out.Choices[0].FinishReason,
	}
	if out.Created != 0 {
		chat.CreatedAt = time.Unix(out.Created, 0)
	}
	return chat, nil
}

// Stream issues a streaming chat request and emits one StreamChunk per
// SSE delta. The channel is closed on [DONE], EOF, or context cancel.
func (p *Provider) Stream(ctx context.Context, req *llm.ChatRequest) (<-chan llm.StreamChunk, error) {
	start := time.Now()
	resp, err := p.post(ctx, p.buildRequest(req, true))
	if err != nil {
		observeRequest(p.Name(), "stream", time.Since(start), err)
		return nil, err
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		mapped := p.mapStatus(resp.StatusCode, readErrMsg(resp.Body))
		observeRequest(p.Name(), "stream", time.Since(start), mapped)
		return nil, mapped
	}

	ch := make(chan llm.StreamChunk)
	go func() {
		defer resp.Body.Close()
		defer close(ch)
		var streamErr error
		defer func() { observeRequest(p.Name(), "stream", time.Since(start), streamErr) }()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				return
			}
			var out chatCompletionResponse
			if err := json.Unmarshal([]byte(data), &out); err != nil {
				streamErr = err
				p.send(ctx, ch, llm.StreamChunk{Err: types.NewError(types.ErrUpstreamError, "decode stream chunk").WithCause(err).WithProvider(p.Name())})
				return
			}
			for _, choice := range out.Choices {
				chunk := llm.StreamChunk{FinishReason: choice.FinishReason}
				if choice.Delta != nil {
					chunk.Delta = choice.Delta.Content
				}
				if !p.send(ctx, ch, chunk) {
					return
				}
			}
		}
		if err := scanner.Err(); err != nil {
			streamErr = err
			p.send(ctx, ch, llm.StreamChunk{Err: types.NewError(types.ErrUpstreamError, "read stream").WithCause(err).WithRetryable(true).WithProvider(p.Name())})
		}
	}()
	return ch, nil
}

func (p *Provider) send(ctx context.Context, ch chan<- llm.StreamChunk, chunk llm.StreamChunk) bool {
	select {
	case ch <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}
