package main

import (
	"fmt"
	"path/filepath"

	"github.com/nvandessel/conjoint/internal/export"
	"github.com/nvandessel/conjoint/internal/session"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <design-id>",
		Short: "Write a design and optional responses into a new study folder",
		Long: `Write a stored design, and optionally a simulation drawn from it, into
.conjoint/studies/<study>_<timestamp>/ together with a session.json manifest.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			responseID, _ := cmd.Flags().GetString("responses")
			formatName, _ := cmd.Flags().GetString("format")

			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}

			runner, cleanup, err := openRunner(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			manifest, dir, err := runner.Export(cmd.Context(), session.ExportRequest{
				DesignID:   args[0],
				ResponseID: responseID,
				Format:     format,
			})
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, map[string]any{"dir": dir, "manifest": manifest})
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Exported to %s\n", dir)
			for _, f := range manifest.Files {
				fmt.Fprintf(w, "  %s\n", filepath.Join(dir, f))
			}
			return nil
		},
	}

	cmd.Flags().String("responses", "", "Simulation run ID to export alongside the design")
	cmd.Flags().String("format", "csv", "Export format: csv, jsonl or arrow")
	return cmd
}
