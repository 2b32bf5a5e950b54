package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/miniagents/llm"
	"github.com/BaSui01/miniagents/types"
)

// emptyPlanAnswer is the fixed answer returned when planning yields no
// usable steps.
const emptyPlanAnswer = "Failed to generate valid action plan, task terminated."

// fencedBlock matches the first fenced code block, with or without a
// language tag. Only the first block is consulted; surrounding prose is
// tolerated.
var fencedBlock = regexp.MustCompile("(?s)```(?:[a-zA-Z0-9_-]*)\\s*\\n?(.*?)```")

// Planner decomposes a question into an ordered list of step strings.
type Planner struct {
	provider llm.Provider
	template string
	logger   *zap.Logger
}

// NewPlanner builds a planner. An empty template selects the default.
func NewPlanner(provider llm.Provider, template string, logger *zap.Logger) *Planner {
	if template == "" {
		template = defaultPlannerPrompt
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{provider: provider, template: template, logger: logger}
}

// CreatePlan asks the model for a plan and parses it. A malformed plan is
// a recoverable condition: it returns an empty plan and no error. A
// transport failure is returned as an error.
func (p *Planner) CreatePlan(ctx context.Context, question string, cfg Config) ([]string, error) {
	prompt := renderPrompt(p.template, map[string]string{"question": question})
	req := &llm.ChatRequest{
		Messages:    []types.Message{types.NewSystemMessage(prompt)},
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
	text, err := llm.StreamAndCollect(ctx, p.provider, req)
	if err != nil {
		return nil, err
	}

	plan, err := parsePlan(text)
	if err != nil {
		p.logger.Warn("plan parse failed, degrading to empty plan", zap.Error(err))
		return []string{}, nil
	}
	p.logger.Info("plan generated", zap.Int("steps", len(plan)))
	return plan, nil
}

// parsePlan extracts the first fenced block and decodes it as a JSON
// array of strings. Anything else is a parse error.
func parsePlan(response string) ([]string, error) {
	m := fencedBlock.FindStringSubmatch(response)
	if m == nil {
		return nil, types.NewError(types.ErrPlanParse, "no fenced plan block in response")
	}
	var plan []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &plan); err != nil {
		return nil, types.NewError(types.ErrPlanParse, "plan block is not a JSON array of strings").WithCause(err)
	}
	return plan, nil
}

// Executor runs a plan step by step, feeding each step the accumulated
// history of earlier results.
type Executor struct {
	provider llm.Provider
	template string
	logger   *zap.Logger
}

// NewExecutor builds an executor. An empty template selects the default.
func NewExecutor(provider llm.Provider, template string, logger *zap.Logger) *Executor {
	if template == "" {
		template = defaultExecutorPrompt
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{provider: provider, template: template, logger: logger}
}

// Execute runs the steps in order. The answer for the final step is the
// final answer for the whole plan.
func (e *Executor) Execute(ctx context.Context, question string, plan []string, cfg Config) (string, error) {
	var history strings.Builder
	var finalAnswer string

	for i, step := range plan {
		e.logger.Info("executing step",
			zap.Int("step", i+1),
			zap.Int("total", len(plan)),
			zap.String("description", step))

		prompt := renderPrompt(e.template, map[string]string{
			"question":     question,
			"plan":         renderPlan(plan),
			"history":      history.String(),
			"current_step": step,
		})
		req := &llm.ChatRequest{
			Messages:    []types.Message{types.NewSystemMessage(prompt)},
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		}
		result, err := llm.StreamAndCollect(ctx, e.provider, req)
		if err != nil {
			return "", err
		}

		fmt.Fprintf(&history, "Step %d: %s\nResult: %s\n\n", i+1, step, result)
		finalAnswer = result
	}
	return finalAnswer, nil
}

// renderPlan formats the plan as a JSON array for prompt interpolation.
func renderPlan(plan []string) string {
	data, err := json.Marshal(plan)
	if err != nil {
		return strings.Join(plan, "; ")
	}
	return string(data)
}

// PlanAndSolveAgent decomposes a question into a plan and executes it
// step by step. Suited to multi-step reasoning and analysis tasks.
type PlanAndSolveAgent struct {
	*BaseAgent
	planner  *Planner
	executor *Executor
}

// PlanSolveOption customizes a PlanAndSolveAgent.
type PlanSolveOption func(*planSolveOptions)

type planSolveOptions struct {
	plannerTemplate  string
	executorTemplate string
}

// WithPlannerTemplate overrides the planning prompt template.
func WithPlannerTemplate(t string) PlanSolveOption {
	return func(o *planSolveOptions) { o.plannerTemplate = t }
}

// WithExecutorTemplate overrides the execution prompt template.
func WithExecutorTemplate(t string) PlanSolveOption {
	return func(o *planSolveOptions) { o.executorTemplate = t }
}

// NewPlanAndSolveAgent builds a plan-then-execute agent.
func NewPlanAndSolveAgent(name string, provider llm.Provider, systemPrompt string, cfg Config, logger *zap.Logger, opts ...PlanSolveOption) *PlanAndSolveAgent {
	var o planSolveOptions
	for _, opt := range opts {
		opt(&o)
	}
	base := NewBaseAgent(name, provider, systemPrompt, cfg, logger)
	return &PlanAndSolveAgent{
		BaseAgent: base,
		planner:   NewPlanner(provider, o.plannerTemplate, base.logger),
		executor:  NewExecutor(provider, o.executorTemplate, base.logger),
	}
}

// Run plans and then executes. An unusable plan terminates the run with a
// fixed answer rather than an error; the exchange is recorded in history
// either way.
func (a *PlanAndSolveAgent) Run(ctx context.Context, input string) (string, error) {
	ctx, span, logger := a.startRun(ctx, "plan_and_solve", input)
	defer span.End()

	plan, err := a.planner.CreatePlan(ctx, input, a.config)
	if err != nil {
		return "", err
	}
	if len(plan) == 0 {
		logger.Warn("empty plan, terminating task")
		a.AddToHistory(types.NewUserMessage(input), types.NewAssistantMessage(emptyPlanAnswer))
		return emptyPlanAnswer, nil
	}

	answer, err := a.executor.Execute(ctx, input, plan, a.config)
	if err != nil {
		return "", err
	}

	logger.Info("agent run finished", zap.Int("steps", len(plan)))
	a.AddToHistory(types.NewUserMessage(input), types.NewAssistantMessage(answer))
	return answer, nil
}
