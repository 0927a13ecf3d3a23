package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"intentrouter/internal/logging"
)

// HTTPExecutor runs tools that have an HTTP endpoint.
type HTTPExecutor struct {
	registry *Registry
	client   *http.Client
}

// NewHTTPExecutor creates an executor over registry. client may be nil.
func NewHTTPExecutor(registry *Registry, client *http.Client) *HTTPExecutor {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &HTTPExecutor{registry: registry, client: client}
}

// LoadHTTPExecutor reads a tools configuration and builds an executor over it.
func LoadHTTPExecutor(path string) (*HTTPExecutor, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	reg, err := NewRegistryFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewHTTPExecutor(reg, nil), nil
}

// Registry returns the tool definitions the executor serves.
func (x *HTTPExecutor) Registry() *Registry { return x.registry }

// HasEndpoint reports whether tool can be executed over HTTP.
func (x *HTTPExecutor) HasEndpoint(tool string) bool { return x.registry.HasEndpoint(tool) }

// Execute calls the tool's endpoint. ok is false when the tool is configured
// without an endpoint; the caller should fall back to a stub.
func (x *HTTPExecutor) Execute(ctx context.Context, tool string, args map[string]any) (output string, ok bool, err error) {
	def := x.registry.Get(tool)
	if def == nil {
		return "", false, fmt.Errorf("%w: %s", ErrToolNotFound, tool)
	}
	if def.Endpoint == nil {
		return "", false, nil
	}
	out, err := x.executeEndpoint(ctx, def.Endpoint, args)
	if err != nil {
		return "", true, err
	}
	return out, true, nil
}

func (x *HTTPExecutor) executeEndpoint(ctx context.Context, ep *Endpoint, args map[string]any) (string, error) {
	rawURL, err := SubstituteURL(ep.URL, args)
	if err != nil {
		return "", err
	}
	query, err := substituteMap(ep.Query, args)
	if err != nil {
		return "", err
	}
	headers, err := substituteMap(ep.Headers, args)
	if err != nil {
		return "", err
	}

	method := strings.ToUpper(ep.Method)
	if method == "" {
		method = DefaultMethod
	}
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint URL %q: %w", rawURL, err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if ep.Body != nil {
		payload, err := substituteValue(ep.Body, args)
		if err != nil {
			return "", err
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	timeout := time.Duration(ep.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = DefaultTimeoutSecs * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	logging.ToolsDebug("%s %s", method, u.Redacted())
	resp, err := x.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP %s - %s", resp.Status, string(respBody))
	}

	if ep.ResponsePath == "" {
		return string(respBody), nil
	}
	var doc any
	if err := json.Unmarshal(respBody, &doc); err != nil {
		return "", fmt.Errorf("response is not valid JSON: %w", err)
	}
	return ExtractJSONPath(doc, ep.ResponsePath)
}
