// Package mocks provides test doubles for the framework's interfaces.
package mocks

import (
	"context"
	"sync"

	"github.com/BaSui01/miniagents/llm"
	"github.com/BaSui01/miniagents/types"
)

// MockProvider is a scripted llm.Provider. Responses are queued in
// order; each Completion or Stream call consumes one. When the queue is
// exhausted the last response repeats. It is safe for concurrent use.
type MockProvider struct {
	mu        sync.Mutex
	responses []string
	err       *types.Error
	errAfter  int // fail calls numbered > errAfter (1-based); 0 disables
	chunkSize int
	calls     []*llm.ChatRequest
}

// NewMockProvider scripts a provider with the given responses in order.
func NewMockProvider(responses ...string) *MockProvider {
	if len(responses) == 0 {
		responses = []string{"mock response"}
	}
	return &MockProvider{responses: responses, chunkSize: 4}
}

// WithError makes every call fail with err.
func (m *MockProvider) WithError(err *types.Error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithErrorAfter makes calls fail once n calls have succeeded.
func (m *MockProvider) WithErrorAfter(n int, err *types.Error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	m.errAfter = n
	return m
}

// WithChunkSize sets how many characters each stream chunk carries.
func (m *MockProvider) WithChunkSize(n int) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > 0 {
		m.chunkSize = n
	}
	return m
}

// Name implements llm.Provider.
func (m *MockProvider) Name() string { return "mock" }

// Calls returns the requests recorded so far.
func (m *MockProvider) Calls() []*llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*llm.ChatRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many requests have been recorded.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// next records the call and returns the scripted response or error.
func (m *MockProvider) next(req *llm.ChatRequest) (string, *types.Error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)
	if m.err != nil && (m.errAfter == 0 || len(m.calls) > m.errAfter) {
		return "", m.err
	}

	idx := len(m.calls) - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], nil
}

// Completion implements llm.Provider.
func (m *MockProvider) Completion(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	text, err := m.next(req)
	if err != nil {
		return nil, err
	}
	return &llm.ChatResponse{
		Provider:     m.Name(),
		Content:      text,
		FinishReason: "stop",
	}, nil
}

// Stream implements llm.Provider, emitting the scripted response in
// fixed-size chunks.
func (m *MockProvider) Stream(ctx context.Context, req *llm.ChatRequest) (<-chan llm.StreamChunk, error) {
	text, scriptErr := m.next(req)

	ch := make(chan llm.StreamChunk)
	go func() {
		defer close(ch)
		if scriptErr != nil {
			select {
			case ch <- llm.StreamChunk{Err: scriptErr}:
			case <-ctx.Done():
			}
			return
		}
		size := m.chunkSize
		for i := 0; i < len(text); i += size {
			end := i + size
			if end > len(text) {
				end = len(text)
			}
			select {
			case ch <- llm.StreamChunk{Delta: text[i:end]}:
			case <-ctx.Done():
				return
			}
		}
		select {
		case ch <- llm.StreamChunk{FinishReason: "stop"}:
		case <-ctx.Done():
		}
	}()
	return ch, nil
}

var _ llm.Provider = (*MockProvider)(nil)
