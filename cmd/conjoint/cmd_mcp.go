package main

import (
	"fmt"

	"github.com/nvandessel/conjoint/internal/logging"
	"github.com/nvandessel/conjoint/internal/mcp"
	"github.com/nvandessel/conjoint/internal/store"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Run the MCP server over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout exposing the
conjoint_design, conjoint_simulate and conjoint_runs tools.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			trace := logging.NewTraceLog(store.DataDir(root), cfg.Logging.Level)
			defer trace.Close()

			server, err := mcp.NewServer(&mcp.Config{
				Name:     "conjoint",
				Version:  version,
				Root:     root,
				Settings: cfg,
				Logger:   newLogger(cmd, cfg),
				Trace:    trace,
			})
			if err != nil {
				return fmt.Errorf("failed to start MCP server: %w", err)
			}

			return server.Run(cmd.Context())
		},
	}
}
