// Package perception turns user text into an IntentPayload and provides the
// language model clients used for extraction and by the agent loop.
package perception

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Provider names an LLM backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
	ProviderScripted  Provider = "scripted"
)

// Completion is one model response. ID is the provider's response id, used to
// continue a conversation where the provider supports it.
type Completion struct {
	Text string
	ID   string
}

// LLMClient sends a prompt and returns the model's text.
type LLMClient interface {
	// Complete sends prompt. previousID continues an earlier response when the
	// provider supports server-side conversation state; "" starts fresh.
	Complete(ctx context.Context, prompt, previousID string) (Completion, error)
	Provider() Provider
}

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("no text found in LLM response")

// APIError is a failed provider call.
type APIError struct {
	Provider   Provider
	StatusCode int // 0 when the request never got an HTTP response
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// withDefaultTimeout applies timeout when ctx has no deadline.
func withDefaultTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// =============================================================================
// SCRIPTED CLIENT
// =============================================================================

// ScriptedClient replays canned responses in order. It records every prompt it
// receives. When the script runs out it returns Fallback, or an error when
// Fallback is empty.
type ScriptedClient struct {
	mu        sync.Mutex
	responses []string
	errs      map[int]error
	prompts   []string
	prevIDs   []string
	Fallback  string
}

// NewScriptedClient creates a client that answers with responses in order.
func NewScriptedClient(responses ...string) *ScriptedClient {
	return &ScriptedClient{responses: responses, errs: map[int]error{}}
}

// FailAt makes call n (0-based) return err.
func (c *ScriptedClient) FailAt(n int, err error) *ScriptedClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs[n] = err
	return c
}

func (c *ScriptedClient) Provider() Provider { return ProviderScripted }

func (c *ScriptedClient) Complete(ctx context.Context, prompt, previousID string) (Completion, error) {
	if err := ctx.Err(); err != nil {
		return Completion{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.prompts)
	c.prompts = append(c.prompts, prompt)
	c.prevIDs = append(c.prevIDs, previousID)

	if err, ok := c.errs[n]; ok {
		return Completion{}, err
	}
	id := fmt.Sprintf("scripted-%d", n+1)
	if n < len(c.responses) {
		return Completion{Text: c.responses[n], ID: id}, nil
	}
	if c.Fallback != "" {
		return Completion{Text: c.Fallback, ID: id}, nil
	}
	return Completion{}, &APIError{Provider: ProviderScripted, Message: "script exhausted", Err: ErrEmptyResponse}
}

// Prompts returns the prompts received so far.
func (c *ScriptedClient) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

// PreviousIDs returns the continuation ids passed with each call.
func (c *ScriptedClient) PreviousIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prevIDs...)
}

// Calls reports how many completions were requested.
func (c *ScriptedClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}
