package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/miniagents/llm"
	"github.com/BaSui01/miniagents/types"
)

// convergencePhrase terminates the reflection loop when it appears in
// reviewer feedback, matched case-insensitively.
const convergencePhrase = "no improvement needed"

// RecordType labels entries in the reflection trajectory.
type RecordType string

const (
	RecordExecution  RecordType = "execution"
	RecordReflection RecordType = "reflection"
)

// Record is one entry in the trajectory.
type Record struct {
	Type    RecordType
	Content string
}

// Memory is the short-term trajectory of one reflection run: an ordered
// log of execution attempts and reviewer feedback. It is not safe for
// concurrent use; every run gets a fresh instance.
type Memory struct {
	records []Record
}

// NewMemory returns an empty trajectory.
func NewMemory() *Memory { return &Memory{} }

// AddRecord appends an entry.
func (m *Memory) AddRecord(t RecordType, content string) {
	m.records = append(m.records, Record{Type: t, Content: content})
}

// Records returns a copy of the trajectory entries.
func (m *Memory) Records() []Record {
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// Trajectory renders the full log as one text block, attempts and
// feedback in order.
func (m *Memory) Trajectory() string {
	var b strings.Builder
	for _, r := range m.records {
		switch r.Type {
		case RecordExecution:
			fmt.Fprintf(&b, "--- Previous Attempt ---\n%s\n\n", r.Content)
		case RecordReflection:
			fmt.Fprintf(&b, "--- Reviewer Feedback ---\n%s\n\n", r.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

// LastExecution returns the most recent execution content, or "" when no
// execution has been recorded.
func (m *Memory) LastExecution() string {
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].Type == RecordExecution {
			return m.records[i].Content
		}
	}
	return ""
}

// ReflectionPrompts bundles the three templates driving a reflection run.
// Empty fields select the defaults.
type ReflectionPrompts struct {
	Initial string
	Reflect string
	Refine  string
}

func (p ReflectionPrompts) withDefaults() ReflectionPrompts {
	if p.Initial == "" {
		p.Initial = defaultInitialPrompt
	}
	if p.Reflect == "" {
		p.Reflect = defaultReflectPrompt
	}
	if p.Refine == "" {
		p.Refine = defaultRefinePrompt
	}
	return p
}

// ReflectionAgent answers a task, critiques its own answer, and refines
// it until the critique converges or the iteration bound is reached.
// Suited to code generation, document writing and other tasks that
// benefit from iterative refinement.
type ReflectionAgent struct {
	*BaseAgent
	prompts ReflectionPrompts
}

// NewReflectionAgent builds a reflection agent. cfg.MaxIterations bounds
// the reflect/refine loop.
func NewReflectionAgent(name string, provider llm.Provider, systemPrompt string, cfg Config, logger *zap.Logger, prompts ReflectionPrompts) *ReflectionAgent {
	return &ReflectionAgent{
		BaseAgent: NewBaseAgent(name, provider, systemPrompt, cfg, logger),
		prompts:   prompts.withDefaults(),
	}
}

// Run executes the task once, then iterates: reflect, test for
// convergence, refine. The most recent execution is the final answer.
func (a *ReflectionAgent) Run(ctx context.Context, input string) (string, error) {
	ctx, span, logger := a.startRun(ctx, "reflection", input)
	defer span.End()

	memory := NewMemory()

	initial, err := a.completion(ctx, []types.Message{
		types.NewUserMessage(renderPrompt(a.prompts.Initial, map[string]string{"task": input})),
	})
	if err != nil {
		return "", err
	}
	memory.AddRecord(RecordExecution, initial)

	for i := 0; i < a.config.MaxIterations; i++ {
		logger.Info("reflection iteration", zap.Int("iteration", i+1), zap.Int("max", a.config.MaxIterations))

		lastResult := memory.LastExecution()
		feedback, err := a.completion(ctx, []types.Message{
			types.NewUserMessage(renderPrompt(a.prompts.Reflect, map[string]string{
				"task":    input,
				"content": lastResult,
			})),
		})
		if err != nil {
			return "", err
		}
		memory.AddRecord(RecordReflection, feedback)

		if strings.Contains(strings.ToLower(feedback), convergencePhrase) {
			logger.Info("reflection converged", zap.Int("iteration", i+1))
			break
		}

		refined, err := a.completion(ctx, []types.Message{
			types.NewUserMessage(renderPrompt(a.prompts.Refine, map[string]string{
				"task":         input,
				"last_attempt": lastResult,
				"feedback":     feedback,
			})),
		})
		if err != nil {
			return "", err
		}
		memory.AddRecord(RecordExecution, refined)
	}

	final := memory.LastExecution()
	logger.Info("agent run finished", zap.Int("records", len(memory.records)))
	a.AddToHistory(types.NewUserMessage(input), types.NewAssistantMessage(final))
	return final, nil
}
