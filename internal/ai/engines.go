package ai

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Supported providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// EngineConfig selects and tunes a completion backend.
type EngineConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int
}

// WithModel returns a copy of c using model. An empty model leaves c as is.
func (c EngineConfig) WithModel(model string) EngineConfig {
	if model != "" {
		c.Model = model
	}
	return c
}

// NewCompleter builds the provider-specific completer for cfg. Missing API
// keys are read from the provider's usual environment variable.
func NewCompleter(cfg EngineConfig, log *slog.Logger) (Completer, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("no model configured for provider %q", cfg.Provider)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	switch cfg.Provider {
	case ProviderAnthropic:
		return NewAnthropicCompleter(cfg, log), nil
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			cfg.APIKey = os.Getenv(CredentialEnv[ProviderOpenAI])
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = os.Getenv("OPENAI_BASE_URL")
		}
		return NewOpenAICompleter(cfg, log), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
}

func orDiscard(log *slog.Logger) *slog.Logger {
	if log != nil {
		return log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
