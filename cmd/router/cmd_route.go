package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"intentrouter/internal/config"
	"intentrouter/internal/logging"
	"intentrouter/internal/router"
	"intentrouter/internal/types"
)

type routeOptions struct {
	date      string
	location  string
	recipient string
	source    string
	useLLM    bool
	stub      bool
	backend   string
	rules     string
	tools     string
}

var routeOpts routeOptions

var routeCmd = &cobra.Command{
	Use:   "route [text]",
	Short: "Extract an intent, route it and run the chosen tool",
	Long: `Single-shot routing. Prints the intent JSON, the decision and, when the
decision is a route, the tool result.

Examples:
  router route "what's the weather in Paris tomorrow"
  router route "email about the offsite" --recipient alex
  router route "find budget notes" --backend prolog`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRoute(cmd.Context(), cmd.OutOrStdout(), cfg, strings.Join(args, " "), routeOpts)
	},
}

func init() {
	f := routeCmd.Flags()
	f.StringVar(&routeOpts.date, "date", "", "Date entity (today, tomorrow, friday, YYYY-MM-DD)")
	f.StringVar(&routeOpts.location, "location", "", "Location entity")
	f.StringVar(&routeOpts.recipient, "recipient", "", "Recipient entity")
	f.StringVar(&routeOpts.source, "source", "", "Source preference: notes, files, either")
	f.BoolVar(&routeOpts.useLLM, "use-llm", false, "Extract the intent with the configured LLM")
	f.BoolVar(&routeOpts.stub, "stub", false, "Decide with the native strategy only")
	f.StringVar(&routeOpts.backend, "backend", "", "Rule engine to probe: native, swipl, prolog, datalog")
	f.StringVar(&routeOpts.rules, "router", "", "Rule file for the selected backend")
	f.StringVar(&routeOpts.tools, "tools", "", "Tools configuration (JSON or TOML)")
}

func runRoute(ctx context.Context, w io.Writer, c *config.Config, text string, opts routeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	payload, err := newExtractor(ctx, c, opts.useLLM).Extract(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to extract intent: %w", err)
	}
	payload = applyOverrides(payload, opts)

	if payload.Intent == types.IntentUnknown {
		return printJSON(w, types.AskFor(router.QuestionIntent))
	}

	backend := c.Router.Backend
	if opts.backend != "" {
		backend = opts.backend
	}
	if opts.stub {
		backend = "native"
	}
	engine, err := newEngine(c, backend, opts.rules, nil)
	if err != nil {
		return err
	}
	logging.RoutingDebug("routing with backend %s", engine.BackendName())

	decision := engine.Decide(ctx, payload)

	fmt.Fprintln(w, header("Intent JSON:"))
	if err := printJSON(w, payload); err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, header("Decision:"))
	if err := printJSON(w, decision); err != nil {
		return err
	}

	if decision.IsRoute() {
		dispatcher := newDispatcher(firstNonEmpty(opts.tools, c.Tools.Path))
		res := dispatcher.Execute(ctx, decision.Tool, decision.ArgsAny())
		fmt.Fprintln(w)
		fmt.Fprintln(w, header("Tool Result:"))
		fmt.Fprintln(w, res.Output)
	}
	return nil
}

// applyOverrides lays CLI-provided slots over the extracted payload and
// resolves a relative date.
func applyOverrides(p types.IntentPayload, opts routeOptions) types.IntentPayload {
	if v := types.Str(opts.date); v != nil {
		p.Entities.Date = v
	}
	if v := types.Str(opts.location); v != nil {
		p.Entities.Location = v
	}
	if v := types.Str(opts.recipient); v != nil {
		p.Entities.Recipient = v
	}
	if opts.source != "" {
		p.Constraints.SourcePreference = types.ParseSourcePreference(opts.source)
	}
	if p.Entities.Date != nil {
		resolved := types.ResolveDate(*p.Entities.Date)
		if resolved != *p.Entities.Date {
			logging.RoutingDebug("resolved date %q -> %q", *p.Entities.Date, resolved)
		}
		p.Entities.Date = &resolved
	}
	return p
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
