package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"intentrouter/internal/store"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect the agent's conversation memory",
}

var memoryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many exchanges the memory store holds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMemoryStats(cmd.Context(), cmd.OutOrStdout(), cfg.Memory.DatabasePath)
	},
}

func init() {
	memoryCmd.AddCommand(memoryStatsCmd)
}

func runMemoryStats(ctx context.Context, w io.Writer, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	st, err := db.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, header("Conversation memory"))
	fmt.Fprintf(w, "path:      %s\n", st.Path)
	fmt.Fprintf(w, "exchanges: %d\n", st.ExchangeCount)
	fmt.Fprintf(w, "sessions:  %d\n", st.SessionCount)
	if !st.LastUpdated.IsZero() {
		fmt.Fprintf(w, "updated:   %s\n", st.LastUpdated.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}
