package tools

import (
	"context"
	"fmt"

	"intentrouter/internal/logging"
	"intentrouter/internal/metrics"
)

// Result sources, for metrics.
const (
	SourceHTTP = "http"
	SourceStub = "stub"
)

// Dispatcher is the Executor used by the CLI and the agent loop. It tries the
// configured HTTP endpoint first and falls back to a stub.
type Dispatcher struct {
	http *HTTPExecutor // nil: stubs only
}

// NewDispatcher creates a dispatcher. x may be nil.
func NewDispatcher(x *HTTPExecutor) *Dispatcher {
	return &Dispatcher{http: x}
}

// Registry returns the configured tools, or nil when none are configured.
func (d *Dispatcher) Registry() *Registry {
	if d.http == nil {
		return nil
	}
	return d.http.Registry()
}

// Execute never panics and never returns an error; failures are reported as
// "[error] <tool>: <message>" with Success=false.
func (d *Dispatcher) Execute(ctx context.Context, tool string, args map[string]any) (res Result) {
	source := SourceStub
	defer func() {
		if r := recover(); r != nil {
			res = failure(tool, fmt.Errorf("panic: %v", r))
		}
		metrics.RecordToolCall(tool, source, res.Success)
	}()

	if d.http != nil && d.http.HasEndpoint(tool) {
		source = SourceHTTP
		out, ok, err := d.http.Execute(ctx, tool, args)
		if err != nil {
			logging.Get(logging.CategoryTools).Warn("tool execution failed: %s: %v", tool, err)
			return failure(tool, err)
		}
		if ok {
			return Result{Tool: tool, Success: true, Output: out}
		}
		source = SourceStub
	}

	return Result{Tool: tool, Success: true, Output: Stub(tool, args)}
}

func failure(tool string, err error) Result {
	return Result{Tool: tool, Success: false, Output: fmt.Sprintf("[error] %s: %v", tool, err)}
}

// Stub returns the deterministic offline output for tool.
func Stub(tool string, args map[string]any) string {
	a := compactJSON(args)
	switch tool {
	case "search_notes":
		return "[stub] searched notes for: " + a
	case "search_files":
		return "[stub] searched files for: " + a
	case "get_weather":
		return "[stub] weather result for: " + a
	case "get_apple_weather":
		return "[stub] apple weather result for: " + a
	case "draft_email":
		return "[stub] drafted email with: " + a
	case "create_todo":
		return "[stub] created todo with: " + a
	}
	return fmt.Sprintf("[stub] unknown tool: %s args=%s", tool, a)
}

// DefaultArgName picks the argument that free text fills in direct tool mode.
func DefaultArgName(tool string) string {
	switch tool {
	case "notes_search_by_tag":
		return "tag"
	case "get_note", "open_note":
		return "id"
	case "list_notes":
		return "folder"
	case "notes_index":
		return "action"
	}
	return "query"
}

// DirectArgs builds arguments for direct tool mode from free text and flags.
func DirectArgs(tool, text, date, location string) map[string]any {
	args := map[string]any{}
	if text != "" {
		args[DefaultArgName(tool)] = text
	}
	if date != "" {
		args["date"] = date
	}
	if location != "" {
		args["location"] = location
	}
	return args
}

// BuiltinTools describes the tools the router can route to. It is used for the
// agent prompt when no tools configuration is given.
func BuiltinTools() []ToolDef {
	return []ToolDef{
		{Name: "get_apple_weather", Description: "Weather for location/date"},
		{Name: "get_weather", Description: "Weather for location/date (fallback provider)"},
		{Name: "search_notes", Description: "Search user's notes"},
		{Name: "search_files", Description: "Search user's files"},
		{Name: "draft_email", Description: "Draft an email"},
		{Name: "create_todo", Description: "Create a reminder"},
	}
}
