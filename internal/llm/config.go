package llm

// Config selects and configures the model provider.
type Config struct {
	// Provider is one of "openai", "gemini", "anthropic" or "mock".
	Provider string
	ProviderConfig
}

type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}
