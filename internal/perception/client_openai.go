package perception

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"intentrouter/internal/logging"
	"intentrouter/internal/metrics"
)

// OpenAIConfig configures an OpenAI-compatible Responses API client.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string // e.g. http://localhost:8000/v1 for vLLM
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// DefaultOpenAIConfig targets a local OpenAI-compatible server.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		BaseURL:    "http://localhost:8000/v1",
		Model:      "openai/gpt-oss-20b",
		Timeout:    120 * time.Second,
		MaxRetries: 2,
	}
}

// OpenAIClient implements LLMClient over the Responses API. It supports
// conversation continuation through previous_response_id.
type OpenAIClient struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIClient creates an OpenAI client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	def := DefaultOpenAIConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	opts := []option.RequestOption{option.WithMaxRetries(cfg.MaxRetries)}
	// Local servers accept any key, but the SDK requires one.
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "not-needed"
	}
	opts = append(opts, option.WithAPIKey(apiKey))
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

func (c *OpenAIClient) Provider() Provider { return ProviderOpenAI }

// Complete sends prompt as the input string of a Responses API request.
func (c *OpenAIClient) Complete(ctx context.Context, prompt, previousID string) (Completion, error) {
	ctx, cancel := withDefaultTimeout(ctx, c.timeout)
	defer cancel()

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.model),
		Input: responses.ResponseNewParamsInputUnion{OfString: openai.String(prompt)},
	}
	if previousID != "" {
		params.PreviousResponseID = openai.String(previousID)
	}

	logging.PerceptionDebug("[OpenAI] request: model=%s prompt_len=%d continued=%v", c.model, len(prompt), previousID != "")
	start := time.Now()
	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		metrics.RecordLLMCall(string(ProviderOpenAI), "error", time.Since(start))
		return Completion{}, wrapOpenAIError(err)
	}
	metrics.RecordLLMCall(string(ProviderOpenAI), "ok", time.Since(start))

	text := strings.TrimSpace(resp.OutputText())
	if text == "" {
		return Completion{}, &APIError{Provider: ProviderOpenAI, Message: ErrEmptyResponse.Error(), Err: ErrEmptyResponse}
	}
	logging.PerceptionDebug("[OpenAI] response %s: %d chars in %v", resp.ID, len(text), time.Since(start))
	return Completion{Text: text, ID: resp.ID}, nil
}

func wrapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &APIError{Provider: ProviderOpenAI, StatusCode: apiErr.StatusCode, Message: apiErr.Message, Err: err}
	}
	return &APIError{Provider: ProviderOpenAI, Message: err.Error(), Err: err}
}
