package perception

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"intentrouter/internal/logging"
	"intentrouter/internal/metrics"
)

// GeminiConfig configures the Gemini API client.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GeminiClient implements LLMClient over the Gemini API. previousID is ignored.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClient creates a Gemini client. It does not contact the API.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.Model, timeout: cfg.Timeout}, nil
}

func (c *GeminiClient) Provider() Provider { return ProviderGemini }

func (c *GeminiClient) Complete(ctx context.Context, prompt, _ string) (Completion, error) {
	ctx, cancel := withDefaultTimeout(ctx, c.timeout)
	defer cancel()

	logging.PerceptionDebug("[Gemini] request: model=%s prompt_len=%d", c.model, len(prompt))
	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		metrics.RecordLLMCall(string(ProviderGemini), "error", time.Since(start))
		return Completion{}, &APIError{Provider: ProviderGemini, Message: err.Error(), Err: err}
	}
	metrics.RecordLLMCall(string(ProviderGemini), "ok", time.Since(start))

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return Completion{}, &APIError{Provider: ProviderGemini, Message: ErrEmptyResponse.Error(), Err: ErrEmptyResponse}
	}
	return Completion{Text: text}, nil
}
