package llm

import (
	"context"
	"fmt"
)

// NewClient builds the configured provider wrapped with request logging.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	var base Client
	var err error

	switch cfg.Provider {
	case "openai", "":
		base, err = NewOpenAIClient(cfg.ProviderConfig)
	case "gemini":
		base, err = NewGeminiClient(ctx, cfg.ProviderConfig)
	case "anthropic":
		base, err = NewAnthropicClient(cfg.ProviderConfig)
	case "mock":
		base = NewMockClient()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base), nil
}
