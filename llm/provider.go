package llm

import (
	"context"
	"time"

	"github.com/BaSui01/miniagents/types"
)

// ChatRequest is a provider-agnostic chat completion request.
type ChatRequest struct {
	TraceID     string            `json:"trace_id,omitempty"`
	Model       string            `json:"model,omitempty"`
	Messages    []types.Message   `json:"messages"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Temperature float32           `json:"temperature,omitempty"`
	TopP        float32           `json:"top_p,omitempty"`
	Stop        []string          `json:"stop,omitempty"`
	Timeout     time.Duration     `json:"timeout,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	// Extra carries provider-specific passthrough options verbatim.
	Extra map[string]any `json:"extra,omitempty"`
}

// ChatResponse is a complete, non-streaming response.
type ChatResponse struct {
	ID           string    `json:"id,omitempty"`
	Provider     string    `json:"provider,omitempty"`
	Model        string    `json:"model,omitempty"`
	Content      string    `json:"content"`
	FinishReason string    `json:"finish_reason,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// StreamChunk is one incremental fragment of a streaming response.
// The concatenation of all Delta fields equals the complete response.
// A terminal chunk may carry Err instead of a delta.
type StreamChunk struct {
	Delta        string       `json:"delta,omitempty"`
	FinishReason string       `json:"finish_reason,omitempty"`
	Err          *types.Error `json:"error,omitempty"`
}

// Provider defines the unified LLM transport interface consumed by the
// agent loops. A stream is finite and non-restartable: the channel is
// closed after the final chunk, and the sequence cannot be replayed.
type Provider interface {
	// Completion issues a synchronous chat request and returns the
	// complete response.
	Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Stream issues a streaming chat request. The returned channel is
	// closed when the response is complete or the context is cancelled.
	Stream(ctx context.Context, req *ChatRequest) (<-chan StreamChunk, error)

	// Name returns the provider's unique identifier.
	Name() string
}
