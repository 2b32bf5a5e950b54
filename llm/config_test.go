package llm

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/miniagents/types"
)

func TestClientConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ClientConfig
		wantErr bool
	}{
		{
			name:    "complete",
			cfg:     ClientConfig{Model: "gpt-4o-mini", APIKey: "sk-test", BaseURL: "https://api.example.com/v1"},
			wantErr: false,
		},
		{
			name:    "missing model",
			cfg:     ClientConfig{APIKey: "sk-test", BaseURL: "https://api.example.com/v1"},
			wantErr: true,
		},
		{
			name:    "missing api key",
			cfg:     ClientConfig{Model: "gpt-4o-mini", BaseURL: "https://api.example.com/v1"},
			wantErr: true,
		},
		{
			name:    "missing base url",
			cfg:     ClientConfig{Model: "gpt-4o-mini", APIKey: "sk-test"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, types.ErrMissingCredentials, types.GetErrorCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadClientConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"model: gpt-4o-mini\napi_key: sk-file\nbase_url: https://api.example.com/v1\ntemperature: 0.2\nmax_tokens: 512\n",
	), 0o600))

	cfg, err := LoadClientConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "sk-file", cfg.APIKey)
	assert.Equal(t, float32(0.2), cfg.Temperature)
	assert.Equal(t, 512, cfg.MaxTokens)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadClientConfig_EnvFallback(t *testing.T) {
	t.Setenv("LLM_MODEL_ID", "env-model")
	t.Setenv("LLM_API_KEY", "env-key")
	t.Setenv("LLM_BASE_URL", "https://env.example.com/v1")

	path := filepath.Join(t.TempDir(), "llm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("temperature: 0.9\n"), 0o600))

	cfg, err := LoadClientConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env-model", cfg.Model)
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "https://env.example.com/v1", cfg.BaseURL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadClientConfig_MissingFile(t *testing.T) {
	_, err := LoadClientConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidConfig, types.GetErrorCode(err))
}
