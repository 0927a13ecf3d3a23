package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"intentrouter/internal/logging"
	"intentrouter/internal/tools"
)

var (
	toolDate     string
	toolLocation string
	toolConfig   string
	toolList     bool
)

var toolCmd = &cobra.Command{
	Use:   "tool [name] [text|json]",
	Short: "Run a tool directly, bypassing routing",
	Long: `Direct tool mode. The second argument is either a JSON object of arguments
or free text that fills the tool's main argument (query, tag, id, ...).

Examples:
  router tool search_notes "quarterly budget"
  router tool get_weather '{"location": "Oslo", "date": "2026-02-01"}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dispatcher := newDispatcher(firstNonEmpty(toolConfig, cfg.Tools.Path))
		if toolList {
			return listTools(cmd.OutOrStdout(), dispatcher)
		}
		if len(args) == 0 {
			return fmt.Errorf("tool name required (see --list)")
		}
		if reg := dispatcher.Registry(); reg != nil && !reg.Has(args[0]) {
			logging.ToolsDebug("%s is not in the tools config, using stub", args[0])
		}

		text := ""
		if len(args) > 1 {
			text = strings.Join(args[1:], " ")
		}
		return runTool(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), dispatcher, args[0], text)
	},
}

func init() {
	toolCmd.Flags().StringVar(&toolDate, "date", "", "Date argument")
	toolCmd.Flags().StringVar(&toolLocation, "location", "", "Location argument")
	toolCmd.Flags().StringVar(&toolConfig, "tools", "", "Tools configuration (JSON or TOML)")
	toolCmd.Flags().BoolVar(&toolList, "list", false, "List the available tools")
}

// listTools prints the configured tools, or the built-in ones when no tools
// file is loaded.
func listTools(w io.Writer, d *tools.Dispatcher) error {
	reg := d.Registry()
	if reg == nil || reg.Len() == 0 {
		reg = tools.NewRegistry()
		for _, def := range tools.BuiltinTools() {
			if err := reg.Register(def); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprint(w, reg.Describe())
	return err
}

func runTool(ctx context.Context, stdout, stderr io.Writer, ex tools.Executor, name, text string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	args := directArgs(name, text)
	logging.ToolsDebug("direct tool execution: %s %s", name, tools.CompactJSON(args))

	res := ex.Execute(ctx, name, args)
	if !res.Success {
		fmt.Fprintln(stderr, failStyle.Render("Tool execution failed"))
	}
	_, err := fmt.Fprintln(stdout, res.Output)
	return err
}

// directArgs parses text as a JSON object when it looks like one; otherwise
// text and the --date/--location flags become the arguments.
func directArgs(name, text string) map[string]any {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") {
		args := map[string]any{}
		if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
			logging.Get(logging.CategoryTools).Warn("invalid JSON args: %v, using empty object", err)
			return map[string]any{}
		}
		return args
	}
	return tools.DirectArgs(name, trimmed, toolDate, toolLocation)
}
