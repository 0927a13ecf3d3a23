package perception

import (
	"context"
	"fmt"
	"time"

	"intentrouter/internal/config"
	"intentrouter/internal/logging"
)

// NewClientFromConfig builds the LLM client named by cfg.Provider.
func NewClientFromConfig(ctx context.Context, cfg config.LLMConfig, timeout time.Duration) (LLMClient, error) {
	// The default model and base URL name a local OpenAI-compatible server;
	// other providers fall back to their own defaults.
	if Provider(cfg.Provider) != ProviderOpenAI {
		defaults := config.DefaultConfig().LLM
		if cfg.Model == defaults.Model {
			cfg.Model = ""
		}
		if cfg.BaseURL == defaults.BaseURL {
			cfg.BaseURL = ""
		}
	}

	switch Provider(cfg.Provider) {
	case ProviderOpenAI, "":
		logging.API("LLM client: openai-compatible model=%s base=%s", cfg.Model, cfg.BaseURL)
		return NewOpenAIClient(OpenAIConfig{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Timeout:    timeout,
			MaxRetries: 2,
		}), nil
	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic API key not configured")
		}
		logging.API("LLM client: anthropic model=%s", cfg.Model)
		return NewAnthropicClient(AnthropicConfig{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Timeout:    timeout,
			MaxRetries: 2,
		}), nil
	case ProviderGemini:
		logging.API("LLM client: gemini model=%s", cfg.Model)
		return NewGeminiClient(ctx, GeminiConfig{APIKey: cfg.APIKey, Model: cfg.Model, Timeout: timeout})
	}
	return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
}
