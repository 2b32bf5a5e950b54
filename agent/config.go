package agent

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/miniagents/types"
)

// Config carries runtime parameters shared by the agents.
type Config struct {
	// Temperature and MaxTokens propagate into every LLM request.
	Temperature float32 `yaml:"temperature" json:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`

	// MaxIterations bounds the reflection loop.
	MaxIterations int `yaml:"max_iterations" json:"max_iterations"`

	// MaxHistory bounds the conversation history; the oldest entries are
	// evicted once the bound is exceeded. Zero means the default.
	MaxHistory int `yaml:"max_history" json:"max_history"`

	// Debug enables verbose per-step logging.
	Debug bool `yaml:"debug" json:"debug"`
}

// DefaultConfig returns the config the agents use when the caller passes
// a zero value.
func DefaultConfig() Config {
	return Config{
		Temperature:   0.7,
		MaxIterations: 3,
		MaxHistory:    100,
	}
}

// LoadConfig reads a YAML config file. Fields absent from the file keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, types.NewError(types.ErrInvalidConfig, "read agent config file").WithCause(err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, types.NewError(types.ErrInvalidConfig, "parse agent config file").WithCause(err)
	}
	return cfg.withDefaults(), nil
}

// withDefaults fills zero fields so partially specified configs behave.
func (c Config) withDefaults() Config {
	if c.MaxIterations <= 0 {
		c.MaxIterations = 3
	}
	if c.MaxHistory <= 0 {
		c.MaxHistory = 100
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	return c
}
