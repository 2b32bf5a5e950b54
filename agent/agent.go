package agent

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/miniagents/llm"
	"github.com/BaSui01/miniagents/types"
)

// Agent is a named runtime that turns an input text into an answer.
type Agent interface {
	Name() string
	Run(ctx context.Context, input string) (string, error)
}

// BaseAgent carries the identity, transport, history and instrumentation
// shared by the concrete agents. It is safe for concurrent use.
type BaseAgent struct {
	name         string
	provider     llm.Provider
	systemPrompt string
	config       Config
	logger       *zap.Logger
	tracer       trace.Tracer

	mu      sync.Mutex
	history []types.Message
}

// NewBaseAgent builds the shared agent core. A zero config is replaced
// with DefaultConfig; a nil logger with a no-op one.
func NewBaseAgent(name string, provider llm.Provider, systemPrompt string, cfg Config, logger *zap.Logger) *BaseAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BaseAgent{
		name:         name,
		provider:     provider,
		systemPrompt: systemPrompt,
		config:       cfg.withDefaults(),
		logger:       logger.With(zap.String("agent", name)),
		tracer:       otel.Tracer("miniagents/agent"),
	}
}

// Name returns the agent's name.
func (a *BaseAgent) Name() string { return a.name }

// Config returns the agent's effective configuration.
func (a *BaseAgent) Config() Config { return a.config }

// History returns a copy of the conversation history.
func (a *BaseAgent) History() []types.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]types.Message, len(a.history))
	copy(out, a.history)
	return out
}

// AddToHistory appends messages, evicting the oldest entries beyond the
// configured bound.
func (a *BaseAgent) AddToHistory(msgs ...types.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history, msgs...)
	if max := a.config.MaxHistory; max > 0 && len(a.history) > max {
		a.history = a.history[len(a.history)-max:]
	}
}

// ClearHistory drops the conversation history.
func (a *BaseAgent) ClearHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
}

// newRunID mints the identifier attached to one Run's logs and span.
func newRunID() string { return uuid.NewString() }

// completion sends one request through the provider's streaming call and
// folds the chunks into a full response.
func (a *BaseAgent) completion(ctx context.Context, msgs []types.Message) (string, error) {
	req := &llm.ChatRequest{
		Messages:    msgs,
		Temperature: a.config.Temperature,
		MaxTokens:   a.config.MaxTokens,
	}
	text, err := llm.StreamAndCollect(ctx, a.provider, req)
	if err != nil {
		return "", err
	}
	if a.config.Debug {
		a.logger.Debug("completion received", zap.Int("chars", len(text)))
	}
	return text, nil
}

// startRun opens the tracing span and log scope for one Run invocation.
func (a *BaseAgent) startRun(ctx context.Context, kind, input string) (context.Context, trace.Span, *zap.Logger) {
	runID := newRunID()
	ctx, span := a.tracer.Start(ctx, "agent.run",
		trace.WithAttributes(
			attribute.String("agent.name", a.name),
			attribute.String("agent.kind", kind),
			attribute.String("agent.run_id", runID),
		))
	logger := a.logger.With(zap.String("run_id", runID))
	logger.Info("agent run started", zap.String("kind", kind), zap.Int("input_chars", len(input)))
	return ctx, span, logger
}
