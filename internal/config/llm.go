package config

// LLMConfig configures the model client used for extraction and the agent loop.
type LLMConfig struct {
	Provider string `yaml:"provider"` // openai, anthropic, gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	// BaseURL targets OpenAI-compatible servers (vLLM, llama.cpp, LM Studio).
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// ValidProviders lists supported LLM providers.
var ValidProviders = []string{"openai", "anthropic", "gemini"}
