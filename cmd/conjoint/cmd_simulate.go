package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/nvandessel/conjoint/internal/export"
	"github.com/nvandessel/conjoint/internal/models"
	"github.com/nvandessel/conjoint/internal/session"
	"github.com/nvandessel/conjoint/internal/simulation"
	"github.com/nvandessel/conjoint/internal/store"
	"github.com/spf13/cobra"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <design-id>",
		Short: "Simulate respondents answering a stored design",
		Long: `Simulate respondents for a stored design. Each respondent is assigned a
version at random and, in every task, picks the first concept with the
highest level of the driver attribute. Without --driver, one attribute is
drawn at random.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			driver, _ := cmd.Flags().GetString("driver")
			outPath, _ := cmd.Flags().GetString("out")
			formatName, _ := cmd.Flags().GetString("format")
			showShares, _ := cmd.Flags().GetBool("shares")

			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}

			req := session.SimulateRequest{DesignID: args[0], Driver: driver}
			if cmd.Flags().Changed("respondents") {
				n, _ := cmd.Flags().GetInt("respondents")
				req.Respondents = &n
			}
			if cmd.Flags().Changed("seed") {
				seed, _ := cmd.Flags().GetInt64("seed")
				req.Seed = &seed
			}

			runner, cleanup, err := openRunner(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			run, err := runner.Simulate(cmd.Context(), req)
			if err != nil {
				return err
			}

			if outPath != "" {
				err := export.WriteFile(outPath, func(w io.Writer) error {
					return export.WriteResponses(w, format, run.Table)
				})
				if err != nil {
					return fmt.Errorf("failed to write %s: %w", outPath, err)
				}
			}

			shares := simulation.Shares(run.Table)
			if jsonOut {
				out := map[string]any{"simulation": session.NewResponseView(run)}
				if showShares {
					out["shares"] = shares
				}
				return writeJSON(cmd, out)
			}

			w := cmd.OutOrStdout()
			printResponses(w, run)
			if showShares {
				fmt.Fprintln(w)
				printShares(w, shares)
			}
			if outPath != "" {
				fmt.Fprintf(w, "\nWrote %s\n", outPath)
			}
			return nil
		},
	}

	cmd.Flags().String("driver", "", "Driver attribute (default: config, else drawn at random)")
	cmd.Flags().Int("respondents", 0, "Number of respondents (default from config)")
	cmd.Flags().Int64("seed", 0, "Random seed (default from config)")
	cmd.Flags().String("out", "", "Also write the responses to this file")
	cmd.Flags().String("format", "csv", "Format for --out: csv, jsonl or arrow")
	cmd.Flags().Bool("shares", false, "Print per-task choice shares")
	return cmd
}

func printResponses(w io.Writer, run *store.ResponseRun) {
	fmt.Fprintf(w, "Simulation %s  design=%s driver=%s seed=%d respondents=%d\n\n",
		run.ID, run.DesignID, run.Table.Driver(), run.Seed, run.Table.Len())

	cols := export.ResponseColumns(run.Table)
	width := columnWidth(append([]string{"respid_00"}, cols...))
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	printRow(w, width, header...)
	fmt.Fprintln(w, strings.Repeat("-", (width+1)*len(cols)-1))
	for _, row := range run.Table.Rows() {
		cells := []any{row.RespondentID, row.Version}
		for _, c := range row.Choices {
			cells = append(cells, c)
		}
		printRow(w, width, cells...)
	}
}

func printShares(w io.Writer, shares []simulation.TaskShares) {
	fmt.Fprintln(w, "Choice shares:")
	for _, ts := range shares {
		fmt.Fprintf(w, "  %s:", models.TaskColumn(ts.Task))
		for c := 1; c <= maxConcept(ts.Shares); c++ {
			if share, ok := ts.Shares[c]; ok {
				fmt.Fprintf(w, "  concept %d %.0f%%", c, share*100)
			}
		}
		fmt.Fprintln(w)
	}
}

func maxConcept(shares map[int]float64) int {
	m := 0
	for c := range shares {
		if c > m {
			m = c
		}
	}
	return m
}
