package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/BaSui01/miniagents/types"
)

// emptyDescription is returned by Describe when nothing is registered.
const emptyDescription = "No tools registered."

type registeredFunc struct {
	description string
	fn          Func
}

// Registry maps names to tools and, in a separate namespace, to raw
// callables. It is constructed explicitly and injected into whatever
// orchestrates tool use; there is no package-level singleton.
//
// Within a namespace, re-registering a name overwrites the prior entry.
// Across the two namespaces a name collision is rejected: a single name
// must resolve to exactly one capability.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	funcs  map[string]registeredFunc
	limits map[string]*rate.Limiter

	limit  rate.Limit
	burst  int
	logger *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithRateLimit applies a per-capability token-bucket limit to everything
// registered after the option takes effect.
func WithRateLimit(callsPerMinute int) Option {
	return func(r *Registry) {
		r.limit = rate.Limit(float64(callsPerMinute) / 60.0)
		r.burst = callsPerMinute
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		tools:  make(map[string]Tool),
		funcs:  make(map[string]registeredFunc),
		limits: make(map[string]*rate.Limiter),
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterTool registers a tool. When autoExpand is true and the tool
// expands into sub-tools, each sub-tool registers under its own name and
// the parent itself is not registered; an expansion yielding nothing
// falls back to registering the parent.
func (r *Registry) RegisterTool(tool Tool, autoExpand bool) error {
	if tool == nil {
		return types.NewError(types.ErrInvalidConfig, "cannot register a nil tool")
	}

	entries := []Tool{tool}
	if exp, ok := tool.(Expander); ok && autoExpand {
		if sub := exp.Expand(); len(sub) > 0 {
			entries = sub
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range entries {
		if _, exists := r.funcs[t.Name()]; exists {
			return types.NewErrorf(types.ErrInvalidConfig, "name %q already registered as a function", t.Name())
		}
	}
	for _, t := range entries {
		if _, exists := r.tools[t.Name()]; exists {
			r.logger.Warn("overwriting registered tool", zap.String("name", t.Name()))
		}
		r.tools[t.Name()] = t
		if r.limit > 0 {
			r.limits[t.Name()] = rate.NewLimiter(r.limit, r.burst)
		}
		r.logger.Info("tool registered", zap.String("name", t.Name()))
	}
	return nil
}

// RegisterFunc registers a raw callable under the function namespace.
func (r *Registry) RegisterFunc(name, description string, fn Func) error {
	if fn == nil {
		return types.NewError(types.ErrInvalidConfig, "cannot register a nil function")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return types.NewErrorf(types.ErrInvalidConfig, "name %q already registered as a tool", name)
	}
	if _, exists := r.funcs[name]; exists {
		r.logger.Warn("overwriting registered function", zap.String("name", name))
	}
	r.funcs[name] = registeredFunc{description: description, fn: fn}
	if r.limit > 0 {
		r.limits[name] = rate.NewLimiter(r.limit, r.burst)
	}
	r.logger.Info("function registered", zap.String("name", name))
	return nil
}

// GetTool looks a tool up by name.
func (r *Registry) GetTool(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// GetFunc looks a raw callable up by name.
func (r *Registry) GetFunc(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.funcs[name]
	if !ok {
		return nil, false
	}
	return f.fn, true
}

// Unregister removes a name, checking the tool namespace first, then the
// function namespace. Removing an absent name is a logged no-op.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[name]; ok {
		delete(r.tools, name)
		delete(r.limits, name)
		r.logger.Info("tool unregistered", zap.String("name", name))
		return true
	}
	if _, ok := r.funcs[name]; ok {
		delete(r.funcs, name)
		delete(r.limits, name)
		r.logger.Info("function unregistered", zap.String("name", name))
		return true
	}
	r.logger.Warn("unregister: name not found", zap.String("name", name))
	return false
}

// Execute dispatches an invocation by name and always returns a textual
// result. The tool namespace is checked first. Errors, panics, and rate
// limit rejections are converted into error strings naming the
// capability; nothing a tool does can propagate to the caller.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]any) (result string) {
	start := time.Now()
	outcome := "ok"

	ctx, span := otel.Tracer("miniagents/tools").Start(ctx, "tool.execute")
	span.SetAttributes(attribute.String("tool.name", name))
	defer func() {
		span.SetAttributes(attribute.String("tool.outcome", outcome))
		span.End()
		observeExecution(name, outcome, time.Since(start))
	}()

	defer func() {
		if rec := recover(); rec != nil {
			outcome = "panic"
			r.logger.Error("tool panicked", zap.String("name", name), zap.Any("panic", rec))
			result = fmt.Sprintf("Error: tool %s failed: panic: %v", name, rec)
		}
	}()

	r.mu.RLock()
	tool, isTool := r.tools[name]
	fn, isFunc := r.funcs[name]
	limiter := r.limits[name]
	r.mu.RUnlock()

	if !isTool && !isFunc {
		outcome = "not_found"
		r.logger.Warn("tool not found", zap.String("name", name))
		return fmt.Sprintf("Error: tool %q not found", name)
	}
	if limiter != nil && !limiter.Allow() {
		outcome = "rate_limited"
		r.logger.Warn("tool rate limited", zap.String("name", name))
		return fmt.Sprintf("Error: tool %s rate limited", name)
	}

	var (
		out string
		err error
	)
	if isTool {
		out, err = tool.Run(ctx, params)
	} else {
		out, err = fn.fn(ctx, funcInput(params))
	}
	if err != nil {
		outcome = "error"
		r.logger.Error("tool execution failed",
			zap.String("name", name),
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return fmt.Sprintf("Error: tool %s failed: %v", name, err)
	}

	r.logger.Debug("tool executed",
		zap.String("name", name),
		zap.Duration("duration", time.Since(start)))
	return out
}

// funcInput derives the input text handed to a raw callable.
func funcInput(params map[string]any) string {
	if params == nil {
		return ""
	}
	if v, ok := params["input"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	return ""
}

// Invocation names one capability call for batch execution.
type Invocation struct {
	Name   string
	Params map[string]any
}

// ExecResult is the outcome of one batched invocation.
type ExecResult struct {
	Name     string
	Output   string
	Duration time.Duration
}

// ExecuteAll runs independent invocations concurrently under a bounded
// worker pool and returns results in invocation order. Individual
// failures surface as textual results, exactly as with Execute.
func (r *Registry) ExecuteAll(ctx context.Context, invocations []Invocation) []ExecResult {
	results := make([]ExecResult, len(invocations))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, inv := range invocations {
		g.Go(func() error {
			start := time.Now()
			results[i] = ExecResult{
				Name:     inv.Name,
				Output:   r.Execute(ctx, inv.Name, inv.Params),
				Duration: time.Since(start),
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures are textual results
	return results
}

// Describe renders "name: description" lines for everything registered,
// tools first, each namespace sorted by name.
func (r *Registry) Describe() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.tools) == 0 && len(r.funcs) == 0 {
		return emptyDescription
	}

	lines := make([]string, 0, len(r.tools)+len(r.funcs))
	for _, name := range sortedKeys(r.tools) {
		lines = append(lines, fmt.Sprintf("%s: %s", name, r.tools[name].Description()))
	}
	for _, name := range sortedKeys(r.funcs) {
		lines = append(lines, fmt.Sprintf("%s: %s", name, r.funcs[name].description))
	}
	return strings.Join(lines, "\n")
}

// List returns every registered name across both namespaces, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools)+len(r.funcs))
	for name := range r.tools {
		names = append(names, name)
	}
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllTools returns every registered tool, sorted by name.
func (r *Registry) AllTools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, 0, len(r.tools))
	for _, name := range sortedKeys(r.tools) {
		out = append(out, r.tools[name])
	}
	return out
}

// Clear removes everything from both namespaces.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tools = make(map[string]Tool)
	r.funcs = make(map[string]registeredFunc)
	r.limits = make(map[string]*rate.Limiter)
	r.logger.Info("registry cleared")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
