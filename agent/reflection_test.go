package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/miniagents/testutil/mocks"
	"github.com/BaSui01/miniagents/types"
)

func TestMemory(t *testing.T) {
	t.Parallel()

	t.Run("trajectory renders in order", func(t *testing.T) {
		t.Parallel()
		m := NewMemory()
		m.AddRecord(RecordExecution, "first draft")
		m.AddRecord(RecordReflection, "needs work")
		m.AddRecord(RecordExecution, "second draft")

		got := m.Trajectory()
		want := "--- Previous Attempt ---\nfirst draft\n\n" +
			"--- Reviewer Feedback ---\nneeds work\n\n" +
			"--- Previous Attempt ---\nsecond draft"
		assert.Equal(t, want, got)
	})

	t.Run("last execution skips reflections", func(t *testing.T) {
		t.Parallel()
		m := NewMemory()
		m.AddRecord(RecordExecution, "draft")
		m.AddRecord(RecordReflection, "feedback")
		assert.Equal(t, "draft", m.LastExecution())
	})

	t.Run("empty memory", func(t *testing.T) {
		t.Parallel()
		m := NewMemory()
		assert.Empty(t, m.Trajectory())
		assert.Empty(t, m.LastExecution())
	})
}

func TestReflectionAgent_Run(t *testing.T) {
	t.Parallel()

	t.Run("converges on no improvement needed", func(t *testing.T) {
		t.Parallel()
		provider := mocks.NewMockProvider(
			"initial answer",
			"Looks great. No improvement needed.",
		)
		a := NewReflectionAgent("writer", provider, "", Config{MaxIterations: 3}, nil, ReflectionPrompts{})

		answer, err := a.Run(context.Background(), "write a haiku")
		require.NoError(t, err)
		assert.Equal(t, "initial answer", answer)
		assert.Equal(t, 2, provider.CallCount(), "convergence skips the refine call")
	})

	t.Run("convergence is case-insensitive", func(t *testing.T) {
		t.Parallel()
		provider := mocks.NewMockProvider(
			"initial answer",
			"NO IMPROVEMENT NEEDED",
		)
		a := NewReflectionAgent("writer", provider, "", Config{MaxIterations: 3}, nil, ReflectionPrompts{})

		answer, err := a.Run(context.Background(), "task")
		require.NoError(t, err)
		assert.Equal(t, "initial answer", answer)
	})

	t.Run("runs all iterations without convergence", func(t *testing.T) {
		t.Parallel()
		provider := mocks.NewMockProvider(
			"draft one",
			"feedback one", "draft two",
			"feedback two", "draft three",
			"feedback three", "draft four",
		)
		a := NewReflectionAgent("writer", provider, "", Config{MaxIterations: 3}, nil, ReflectionPrompts{})

		answer, err := a.Run(context.Background(), "task")
		require.NoError(t, err)
		assert.Equal(t, "draft four", answer, "the last refined draft wins")
		// 1 initial + 3 iterations x (reflect + refine).
		assert.Equal(t, 7, provider.CallCount())
	})

	t.Run("refine prompt carries last attempt and feedback", func(t *testing.T) {
		t.Parallel()
		provider := mocks.NewMockProvider(
			"the draft",
			"be more concise",
			"the refined draft",
			"No improvement needed",
		)
		a := NewReflectionAgent("writer", provider, "", Config{MaxIterations: 3}, nil, ReflectionPrompts{})

		answer, err := a.Run(context.Background(), "write docs")
		require.NoError(t, err)
		assert.Equal(t, "the refined draft", answer)

		calls := provider.Calls()
		require.GreaterOrEqual(t, len(calls), 3)
		refinePrompt := calls[2].Messages[0].Content
		assert.Contains(t, refinePrompt, "write docs")
		assert.Contains(t, refinePrompt, "the draft")
		assert.Contains(t, refinePrompt, "be more concise")
	})

	t.Run("history records the exchange", func(t *testing.T) {
		t.Parallel()
		provider := mocks.NewMockProvider(
			"answer",
			"No improvement needed",
		)
		a := NewReflectionAgent("writer", provider, "", Config{}, nil, ReflectionPrompts{})

		_, err := a.Run(context.Background(), "the task")
		require.NoError(t, err)

		history := a.History()
		require.Len(t, history, 2)
		assert.Equal(t, types.RoleUser, history[0].Role)
		assert.Equal(t, "the task", history[0].Content)
		assert.Equal(t, "answer", history[1].Content)
	})

	t.Run("fresh memory per run", func(t *testing.T) {
		t.Parallel()
		provider := mocks.NewMockProvider(
			"run one answer", "No improvement needed",
			"run two answer", "No improvement needed",
		)
		a := NewReflectionAgent("writer", provider, "", Config{}, nil, ReflectionPrompts{})

		first, err := a.Run(context.Background(), "task one")
		require.NoError(t, err)
		second, err := a.Run(context.Background(), "task two")
		require.NoError(t, err)

		assert.Equal(t, "run one answer", first)
		assert.Equal(t, "run two answer", second)
	})

	t.Run("transport failure surfaces", func(t *testing.T) {
		t.Parallel()
		provider := mocks.NewMockProvider().WithError(
			types.NewError(types.ErrRateLimited, "slow down"))
		a := NewReflectionAgent("writer", provider, "", Config{}, nil, ReflectionPrompts{})

		_, err := a.Run(context.Background(), "task")
		require.Error(t, err)
		assert.Equal(t, types.ErrRateLimited, types.GetErrorCode(err))
	})
}
