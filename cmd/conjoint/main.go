package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nvandessel/conjoint/internal/config"
	"github.com/nvandessel/conjoint/internal/logging"
	"github.com/nvandessel/conjoint/internal/session"
	"github.com/nvandessel/conjoint/internal/store"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "conjoint",
		Short: "Choice-based conjoint design generation and choice simulation",
		Long: `conjoint builds CBC questionnaire designs from a study definition and
simulates respondents answering them.

Designs and simulations are stored under .conjoint/ in the project root and
can be exported as CSV, JSONL or Arrow for analysis.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: warn, info, debug, trace (default from config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newDesignCmd(),
		newSimulateCmd(),
		newRunsCmd(),
		newExportCmd(),
		newBalanceCmd(),
		newPruneCmd(),
		newServeCmd(),
		newMCPServerCmd(),
	)

	return rootCmd
}

// loadSettings loads ~/.conjoint/config.yaml and applies --log-level.
func loadSettings(cmd *cobra.Command) (*config.ConjointConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger writes operational logs to stderr so stdout stays parseable.
func newLogger(cmd *cobra.Command, cfg *config.ConjointConfig) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
}

// openRunner opens the project run store and wires a Runner around it.
// The returned cleanup closes the store and trace log.
func openRunner(cmd *cobra.Command) (*session.Runner, func(), error) {
	root, _ := cmd.Flags().GetString("root")

	cfg, err := loadSettings(cmd)
	if err != nil {
		return nil, nil, err
	}

	runStore, err := store.NewSQLiteRunStore(root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run store: %w", err)
	}

	trace := logging.NewTraceLog(store.DataDir(root), cfg.Logging.Level)
	runner := session.NewRunner(root, runStore, cfg, newLogger(cmd, cfg), trace)

	cleanup := func() {
		trace.Close()
		runStore.Close()
	}
	return runner, cleanup, nil
}

// writeJSON encodes v to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// printRow writes cells separated by padded columns.
func printRow(w io.Writer, width int, cells ...any) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprintf(w, "%-*v", width, c)
	}
	fmt.Fprintln(w)
}
