package perception

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"intentrouter/internal/logging"
	"intentrouter/internal/metrics"
)

// AnthropicConfig configures the Messages API client.
type AnthropicConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int64
	Timeout    time.Duration
	MaxRetries int
}

// DefaultAnthropicConfig returns sensible defaults.
func DefaultAnthropicConfig() AnthropicConfig {
	return AnthropicConfig{
		Model:      "claude-sonnet-4-5",
		MaxTokens:  4096,
		Timeout:    120 * time.Second,
		MaxRetries: 2,
	}
}

// AnthropicClient implements LLMClient over the Messages API. The Messages API
// is stateless, so previousID is ignored and the full prompt is always sent.
type AnthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
}

// NewAnthropicClient creates an Anthropic client.
func NewAnthropicClient(cfg AnthropicConfig) *AnthropicClient {
	def := DefaultAnthropicConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicClient{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
	}
}

func (c *AnthropicClient) Provider() Provider { return ProviderAnthropic }

func (c *AnthropicClient) Complete(ctx context.Context, prompt, _ string) (Completion, error) {
	ctx, cancel := withDefaultTimeout(ctx, c.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	logging.PerceptionDebug("[Anthropic] request: model=%s prompt_len=%d", c.model, len(prompt))
	start := time.Now()
	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		metrics.RecordLLMCall(string(ProviderAnthropic), "error", time.Since(start))
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return Completion{}, &APIError{Provider: ProviderAnthropic, StatusCode: apiErr.StatusCode, Message: apiErr.Error(), Err: err}
		}
		return Completion{}, &APIError{Provider: ProviderAnthropic, Message: err.Error(), Err: err}
	}
	metrics.RecordLLMCall(string(ProviderAnthropic), "ok", time.Since(start))

	var sb strings.Builder
	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			sb.WriteString(b.Text)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return Completion{}, &APIError{Provider: ProviderAnthropic, Message: ErrEmptyResponse.Error(), Err: ErrEmptyResponse}
	}
	return Completion{Text: text, ID: msg.ID}, nil
}
