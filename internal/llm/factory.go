package llm

import "fmt"

// Config selects and configures a provider.
type Config struct {
	Provider string

	OllamaBaseURL    string
	OllamaEmbedModel string
	OllamaChatModel  string

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIEmbedModel string
	OpenAIChatModel  string

	AnthropicAPIKey string
	AnthropicModel  string
}

// NewProvider builds the configured provider. Unknown names are an error so
// a typo in configuration fails at startup, not mid-pipeline.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaEmbedModel, cfg.OllamaChatModel), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIEmbedModel, cfg.OpenAIChatModel), nil
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires an API key")
		}
		return NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
