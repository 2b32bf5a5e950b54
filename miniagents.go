// Package miniagents provides a top-level convenience entry point for
// building agents with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/miniagents"
//
//	a, err := miniagents.NewPlanAndSolve("solver")
//	a, err := miniagents.NewReflection("writer", miniagents.WithMaxIterations(5))
//
// Provider credentials come from LLM_API_KEY, with LLM_MODEL_ID and
// LLM_BASE_URL selecting the model and endpoint. Construct the agents
// from the agent package directly when you need full control.
package miniagents

import (
	"go.uber.org/zap"

	"github.com/BaSui01/miniagents/agent"
	"github.com/BaSui01/miniagents/llm"
	"github.com/BaSui01/miniagents/llm/openai"
)

// Option configures the agents created by the package-level constructors.
type Option func(*options)

type options struct {
	provider     llm.Provider
	systemPrompt string
	logger       *zap.Logger
	config       agent.Config
}

// WithProvider sets a pre-built LLM provider, bypassing env configuration.
func WithProvider(p llm.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithSystemPrompt sets the agent's system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(o *options) { o.systemPrompt = prompt }
}

// WithLogger sets a custom zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithConfig replaces the whole agent config.
func WithConfig(cfg agent.Config) Option {
	return func(o *options) { o.config = cfg }
}

// WithMaxIterations bounds the reflection loop.
func WithMaxIterations(n int) Option {
	return func(o *options) { o.config.MaxIterations = n }
}

func build(opts []Option) (*options, error) {
	o := &options{config: agent.DefaultConfig()}
	for _, opt := range opts {
		opt(o)
	}
	if o.provider == nil {
		p, err := openai.NewProvider(llm.DefaultClientConfig(), o.logger)
		if err != nil {
			return nil, err
		}
		o.provider = p
	}
	return o, nil
}

// NewPlanAndSolve creates a plan-then-execute agent configured from the
// environment unless options override it.
func NewPlanAndSolve(name string, opts ...Option) (*agent.PlanAndSolveAgent, error) {
	o, err := build(opts)
	if err != nil {
		return nil, err
	}
	return agent.NewPlanAndSolveAgent(name, o.provider, o.systemPrompt, o.config, o.logger), nil
}

// NewReflection creates a reflect-and-refine agent configured from the
// environment unless options override it.
func NewReflection(name string, opts ...Option) (*agent.ReflectionAgent, error) {
	o, err := build(opts)
	if err != nil {
		return nil, err
	}
	return agent.NewReflectionAgent(name, o.provider, o.systemPrompt, o.config, o.logger, agent.ReflectionPrompts{}), nil
}
