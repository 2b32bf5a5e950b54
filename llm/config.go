package llm

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/miniagents/types"
)

// ClientConfig holds the settings needed to construct a concrete provider.
// Values left empty fall back to the LLM_MODEL_ID, LLM_API_KEY and
// LLM_BASE_URL environment variables.
type ClientConfig struct {
	Model       string        `yaml:"model" json:"model"`
	APIKey      string        `yaml:"api_key" json:"api_key"`
	BaseURL     string        `yaml:"base_url" json:"base_url"`
	Temperature float32       `yaml:"temperature" json:"temperature"`
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultClientConfig returns a config populated from the environment.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Model:       os.Getenv("LLM_MODEL_ID"),
		APIKey:      os.Getenv("LLM_API_KEY"),
		BaseURL:     os.Getenv("LLM_BASE_URL"),
		Temperature: 0.5,
		Timeout:     60 * time.Second,
	}
}

// LoadClientConfig reads a YAML config file and fills unset fields from
// the environment.
func LoadClientConfig(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, types.NewError(types.ErrInvalidConfig, "read llm config").WithCause(err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, types.NewError(types.ErrInvalidConfig, "parse llm config").WithCause(err)
	}
	cfg.applyEnvFallback()
	return cfg, nil
}

func (c *ClientConfig) applyEnvFallback() {
	if c.Model == "" {
		c.Model = os.Getenv("LLM_MODEL_ID")
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv("LLM_API_KEY")
	}
	if c.BaseURL == "" {
		c.BaseURL = os.Getenv("LLM_BASE_URL")
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
}

// Validate reports whether the config is complete enough to construct a
// provider. Missing credentials are fatal at construction time.
func (c *ClientConfig) Validate() error {
	switch {
	case c.Model == "":
		return types.NewError(types.ErrMissingCredentials, "model is required (set LLM_MODEL_ID)")
	case c.APIKey == "":
		return types.NewError(types.ErrMissingCredentials, "api key is required (set LLM_API_KEY)")
	case c.BaseURL == "":
		return types.NewError(types.ErrMissingCredentials, "base url is required (set LLM_BASE_URL)")
	}
	return nil
}
