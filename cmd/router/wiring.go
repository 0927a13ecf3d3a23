package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"intentrouter/internal/config"
	"intentrouter/internal/logging"
	"intentrouter/internal/perception"
	"intentrouter/internal/router"
	"intentrouter/internal/router/datalog"
	"intentrouter/internal/router/prolog"
	"intentrouter/internal/router/rules"
	"intentrouter/internal/router/swipl"
	"intentrouter/internal/tools"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

func header(s string) string { return headerStyle.Render(s) }

// newEngine builds the decision engine for backend. rulesPath overrides the
// configured rule file for that backend; loader may be nil.
func newEngine(c *config.Config, backend, rulesPath string, loader *rules.Loader) (*router.Engine, error) {
	premium := func() bool { return c.Weather.Premium }
	native := router.NewNative(premium)
	opts := []router.Option{router.WithProbeTimeout(c.GetProbeTimeout())}

	b, err := newBackend(c, backend, rulesPath, loader, premium)
	if err != nil {
		return nil, err
	}
	if b != nil {
		opts = append(opts, router.WithBackend(b))
	}
	return router.NewEngine(native, opts...), nil
}

func newBackend(c *config.Config, name, rulesPath string, loader *rules.Loader, premium func() bool) (router.Backend, error) {
	pick := func(configured string) string {
		if rulesPath != "" {
			return rulesPath
		}
		return configured
	}

	switch strings.ToLower(name) {
	case "", "native":
		return nil, nil
	case "swipl":
		return swipl.New(
			swipl.WithBinary(c.Router.SwiplPath),
			swipl.WithRules(pick(c.Router.DictRules)),
			swipl.WithPremiumWeather(premium),
		), nil
	case "prolog":
		return prolog.New(
			prolog.WithRules(pick(c.Router.ListRules)),
			prolog.WithLoader(loader),
			prolog.WithPremiumWeather(premium),
		)
	case "datalog":
		return datalog.New(
			datalog.WithRules(pick(c.Router.DatalogRules)),
			datalog.WithLoader(loader),
			datalog.WithPremiumWeather(premium),
		)
	}
	return nil, fmt.Errorf("unknown router backend %q (valid: %v)", name, config.ValidBackends)
}

// newDispatcher loads the tools file when one is given. A broken file is
// reported and the dispatcher falls back to stubs.
func newDispatcher(path string) *tools.Dispatcher {
	if path == "" {
		return tools.NewDispatcher(nil)
	}
	x, err := tools.LoadHTTPExecutor(path)
	if err != nil {
		logging.Get(logging.CategoryTools).Warn("failed to load tools config: %v", err)
		return tools.NewDispatcher(nil)
	}
	logging.Tools("loaded %d tool(s) from %s", x.Registry().Len(), path)
	return tools.NewDispatcher(x)
}

// toolDefs lists the tools shown to the agent: the configured registry, or the
// built-in tools the stubs answer for.
func toolDefs(d *tools.Dispatcher) []tools.ToolDef {
	if reg := d.Registry(); reg != nil && reg.Len() > 0 {
		return reg.All()
	}
	return tools.BuiltinTools()
}

// newExtractor returns the heuristic extractor, or the LLM extractor backed by
// it when useLLM is set and a client can be built.
func newExtractor(ctx context.Context, c *config.Config, useLLM bool) perception.Extractor {
	heuristic := perception.HeuristicExtractor{}
	if !useLLM {
		return heuristic
	}
	client, err := perception.NewClientFromConfig(ctx, c.LLM, c.GetLLMTimeout())
	if err != nil {
		logging.Get(logging.CategoryPerception).Warn("LLM client unavailable (%v), using heuristic extractor", err)
		return heuristic
	}
	return perception.FallbackExtractor{
		Primary:  perception.NewLLMExtractor(client, perception.IntentPromptFile),
		Fallback: heuristic,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
