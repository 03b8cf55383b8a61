package oracle

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Provider string `envconfig:"ORACLE_PROVIDER" default:"openai"` // "openai", "anthropic" or "static"

	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com"`
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`

	AnthropicBaseURL string `envconfig:"ANTHROPIC_BASE_URL" default:"https://api.anthropic.com"`
	AnthropicAPIKey  string `envconfig:"ANTHROPIC_API_KEY" default:""`
	AnthropicModel   string `envconfig:"ANTHROPIC_MODEL" default:"claude-3-5-haiku-latest"`

	// StaticReply is returned by the static provider for every query.
	StaticReply string `envconfig:"ORACLE_STATIC_REPLY" default:"NOT_RELEASED"`

	MaxTokens   int           `envconfig:"ORACLE_MAX_TOKENS" default:"256"`
	Temperature float64       `envconfig:"ORACLE_TEMPERATURE" default:"0"`
	Timeout     time.Duration `envconfig:"ORACLE_TIMEOUT" default:"30s"`

	// MinInterval is the delay enforced between consecutive queries.
	MinInterval time.Duration `envconfig:"ORACLE_MIN_INTERVAL" default:"1s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// New builds the configured provider behind the rate limiter and a span.
func New(cfg Config) (Oracle, error) {
	var inner Oracle
	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY missing")
		}
		inner = NewOpenAIClient(cfg)
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY missing")
		}
		inner = NewAnthropicClient(cfg)
	case "static":
		inner = NewStatic(Reply{Text: cfg.StaticReply})
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
	return Traced(cfg.Provider, NewLimited(inner, cfg.MinInterval)), nil
}
