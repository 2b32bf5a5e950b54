package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/miniagents/types"
)

func typesMessage(i int) types.Message {
	return types.NewUserMessage(fmt.Sprintf("m%d", i))
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("partial file keeps defaults", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "agent.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_iterations: 5\ndebug: true\n"), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.MaxIterations)
		assert.True(t, cfg.Debug)
		assert.Equal(t, 100, cfg.MaxHistory)
		assert.InDelta(t, 0.7, float64(cfg.Temperature), 1e-6)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_iterations: {nope\n"), 0o644))
		_, err := LoadConfig(path)
		require.Error(t, err)
	})
}

func TestConfigWithDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{}.withDefaults()
	assert.Equal(t, 3, cfg.MaxIterations)
	assert.Equal(t, 100, cfg.MaxHistory)

	custom := Config{MaxIterations: 7, MaxHistory: 10, Temperature: 0.2}.withDefaults()
	assert.Equal(t, 7, custom.MaxIterations)
	assert.Equal(t, 10, custom.MaxHistory)
	assert.InDelta(t, 0.2, float64(custom.Temperature), 1e-6)
}

func TestBaseAgentHistoryBound(t *testing.T) {
	t.Parallel()

	a := NewBaseAgent("bounded", nil, "", Config{MaxHistory: 3}, nil)
	for i := 0; i < 5; i++ {
		a.AddToHistory(typesMessage(i))
	}
	history := a.History()
	require.Len(t, history, 3)
	assert.Equal(t, "m2", history[0].Content)
	assert.Equal(t, "m4", history[2].Content)

	a.ClearHistory()
	assert.Empty(t, a.History())
}
