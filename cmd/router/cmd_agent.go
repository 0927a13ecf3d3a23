package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"intentrouter/internal/agent"
	"intentrouter/internal/config"
	"intentrouter/internal/logging"
	"intentrouter/internal/perception"
	"intentrouter/internal/store"
)

var (
	agentMaxTurns int
	agentNoMemory bool
	agentTools    string
	agentPlain    bool
)

var agentCmd = &cobra.Command{
	Use:   "agent [text]",
	Short: "Answer a request with the multi-turn agent loop",
	Long: `Runs the agent loop: each turn the model picks a tool call, a question for
the user or a final answer. Tool results are fed back until the model answers
or the turn budget runs out.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := perception.NewClientFromConfig(ctx, cfg.LLM, cfg.GetLLMTimeout())
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		answer, err := runAgent(ctx, cfg, client, strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printAnswer(cmd.OutOrStdout(), answer, !agentPlain && isTerminal(os.Stdout))
	},
}

func init() {
	f := agentCmd.Flags()
	f.IntVar(&agentMaxTurns, "max-turns", 0, "Maximum agent turns (default from config)")
	f.BoolVar(&agentNoMemory, "no-memory", false, "Do not read or write conversation memory")
	f.StringVar(&agentTools, "tools", "", "Tools configuration (JSON or TOML)")
	f.BoolVar(&agentPlain, "plain", false, "Print the answer without markdown rendering")
}

func runAgent(ctx context.Context, c *config.Config, client perception.LLMClient, query string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	dispatcher := newDispatcher(firstNonEmpty(agentTools, c.Tools.Path))
	maxTurns := c.Agent.MaxTurns
	if agentMaxTurns > 0 {
		maxTurns = agentMaxTurns
	}

	opts := []agent.Option{
		agent.WithMaxTurns(maxTurns),
		agent.WithPromptFile(c.Agent.PromptFile),
		agent.WithToolDefs(toolDefs(dispatcher)),
	}

	if c.Memory.Enabled && !agentNoMemory {
		db, err := store.Open(c.Memory.DatabasePath)
		if err != nil {
			logging.Get(logging.CategoryStore).Warn("conversation memory unavailable: %v", err)
		} else {
			defer db.Close()
			mem := store.NewSessionMemory(db, c.Memory.MaxResults)
			logging.AgentDebug("memory session %s (%s)", mem.SessionID(), db.Path())
			opts = append(opts, agent.WithMemory(mem))
		}
	} else {
		logging.AgentDebug("conversation memory disabled for this query")
	}

	return agent.New(client, dispatcher, opts...).Run(ctx, query)
}

// printAnswer renders markdown when writing to a terminal.
func printAnswer(w io.Writer, answer string, render bool) error {
	if render {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
		if err == nil {
			if out, err := r.Render(answer); err == nil {
				_, err = fmt.Fprint(w, out)
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, answer)
	return err
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
