// Command router routes natural-language requests to tools through a rule engine,
// or runs a multi-turn agent loop over the same tools.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"intentrouter/internal/config"
	"intentrouter/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Loaded in PersistentPreRunE.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "router",
	Short: "Route natural-language requests to tools via a rule engine",
	Long: `router extracts a structured intent from a request, asks the decision engine
which tool handles it (or which detail is missing), and runs that tool.

The native strategy always decides. A rule-engine backend (swipl, prolog or
datalog) can be probed alongside it; disagreements are logged and counted.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		if err := logging.Initialize(logging.Options{
			Verbose:    verbose,
			JSONFormat: cfg.Logging.Format == "json",
			Disabled:   cfg.Logging.Disabled,
		}); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.BootDebug("config loaded from %s (backend=%s)", configPath, cfg.Router.Backend)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Config file path")

	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(toolCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(memoryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
