package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/nvandessel/conjoint/internal/export"
	"github.com/nvandessel/conjoint/internal/session"
	"github.com/nvandessel/conjoint/internal/store"
	"github.com/nvandessel/conjoint/internal/study"
	"github.com/spf13/cobra"
)

func newDesignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "design <study-file>",
		Short: "Generate a CBC design from a JSON, YAML or TOML study file",
		Long: `Generate a choice-based conjoint design and store it as a run.

The random method draws every level uniformly from a seeded stream; the
orthogonal method cycles levels by concept, task and version and ignores the
seed. The same study, method and seed always produce the same design.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			method, _ := cmd.Flags().GetString("method")
			outPath, _ := cmd.Flags().GetString("out")
			formatName, _ := cmd.Flags().GetString("format")

			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}

			cfg, err := study.LoadFile(args[0])
			if err != nil {
				return err
			}

			req := session.DesignRequest{Study: cfg, Method: method}
			if cmd.Flags().Changed("seed") {
				seed, _ := cmd.Flags().GetInt64("seed")
				req.Seed = &seed
			}

			runner, cleanup, err := openRunner(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			run, err := runner.Design(cmd.Context(), req)
			if err != nil {
				return err
			}

			if outPath != "" {
				err := export.WriteFile(outPath, func(w io.Writer) error {
					return export.WriteDesign(w, format, run.Table)
				})
				if err != nil {
					return fmt.Errorf("failed to write %s: %w", outPath, err)
				}
			}

			if jsonOut {
				return writeJSON(cmd, session.NewDesignView(run))
			}
			printDesign(cmd.OutOrStdout(), run)
			if outPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\nWrote %s\n", outPath)
			}
			return nil
		},
	}

	cmd.Flags().String("method", "", "Design method: random or orthogonal (default from config)")
	cmd.Flags().Int64("seed", 0, "Random seed (default from config)")
	cmd.Flags().String("out", "", "Also write the design to this file")
	cmd.Flags().String("format", "csv", "Format for --out: csv, jsonl or arrow")
	return cmd
}

func printDesign(w io.Writer, run *store.DesignRun) {
	fmt.Fprintf(w, "Design %s  study=%s method=%s seed=%d rows=%d\n\n",
		run.ID, run.Study.Name, run.Method, run.Seed, run.Table.Len())

	view := session.NewDesignView(run)
	width := columnWidth(view.Columns)
	header := make([]any, len(view.Columns))
	for i, c := range view.Columns {
		header[i] = c
	}
	printRow(w, width, header...)
	fmt.Fprintln(w, strings.Repeat("-", (width+1)*len(view.Columns)-1))
	for _, row := range view.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		printRow(w, width, cells...)
	}
}

// columnWidth is the widest column name, at least 3.
func columnWidth(cols []string) int {
	width := 3
	for _, c := range cols {
		if len(c) > width {
			width = len(c)
		}
	}
	return width
}
