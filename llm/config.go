package llm

import (
	"fmt"
	"time"
)

const (
	ProviderNone      = "none"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

type Config struct {
	// Provider selects which LLM provider to use: "openai", "anthropic",
	// "mock" or "none".
	Provider string
	APIKey   string
	Model    string
	// BaseURL overrides the provider endpoint, e.g. for OpenAI-compatible APIs.
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
}

// NewProvider creates a Provider from configuration. "none" returns a nil
// provider and no error.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", ProviderNone:
		return nil, nil
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg)
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg)
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}
