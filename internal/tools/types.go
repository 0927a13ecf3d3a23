// Package tools executes routed tool calls.
//
// Tools are described by a configuration file (JSON or TOML) compatible with the
// OpenAI/Anthropic function-calling format, plus an optional HTTP endpoint per
// tool. Tools without an endpoint, or absent from the configuration, answer with
// a deterministic stub so routing can be exercised offline.
//
// Architecture:
//
//	Decision → Dispatcher.Execute → HTTPExecutor (endpoint) | stub → Result
package tools

import (
	"context"
	"encoding/json"
)

// Endpoint defaults.
const (
	DefaultMethod      = "GET"
	DefaultTimeoutSecs = 30
)

// ToolDef is one configured tool.
type ToolDef struct {
	Name        string         `json:"name" toml:"name"`
	Description string         `json:"description" toml:"description"`
	Parameters  map[string]any `json:"parameters" toml:"parameters"` // JSON Schema
	Endpoint    *Endpoint      `json:"endpoint,omitempty" toml:"endpoint"`
}

// Endpoint describes how a tool is executed over HTTP. String fields accept
// {{arg}} and ${ENV} placeholders.
type Endpoint struct {
	URL          string            `json:"url" toml:"url"`
	Method       string            `json:"method,omitempty" toml:"method"`
	Query        map[string]string `json:"query,omitempty" toml:"query"`
	Headers      map[string]string `json:"headers,omitempty" toml:"headers"`
	Body         any               `json:"body,omitempty" toml:"body"`
	ResponsePath string            `json:"response_path,omitempty" toml:"response_path"` // e.g. $.weather[0].description
	TimeoutSecs  int               `json:"timeout_secs,omitempty" toml:"timeout_secs"`
}

// Config is the root of a tools configuration file.
type Config struct {
	Tools []ToolDef `json:"tools" toml:"tools"`
}

// Result is the outcome of a tool call. Failures are carried in Output with
// Success=false; executors never return errors.
type Result struct {
	Tool    string `json:"tool"`
	Success bool   `json:"success"`
	Output  string `json:"output"`
}

// Executor runs a tool by name.
type Executor interface {
	Execute(ctx context.Context, tool string, args map[string]any) Result
}

// compactJSON renders args the way tool messages and stubs show them.
func compactJSON(args map[string]any) string {
	if args == nil {
		args = map[string]any{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// CompactJSON is the exported form of compactJSON for callers that log arguments.
func CompactJSON(args map[string]any) string {
	return compactJSON(args)
}
