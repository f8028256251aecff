package main

import (
	"fmt"

	"github.com/nvandessel/conjoint/internal/design"
	"github.com/spf13/cobra"
)

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <design-id>",
		Short: "Show how often each level appears in a stored design",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			runner, cleanup, err := openRunner(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			run, err := runner.Store.GetDesign(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			balance := design.Balance(run.Study, run.Table)

			if jsonOut {
				return writeJSON(cmd, map[string]any{"design_id": run.ID, "balance": balance})
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Level balance for %s (%s)\n\n", run.ID, run.Method)
			for i, b := range balance {
				fmt.Fprintf(w, "%s  (spread %d)\n", b.Attribute, b.Spread())
				for _, l := range run.Study.Attributes[i].Levels {
					fmt.Fprintf(w, "  %-12s %d\n", l, b.Counts[l])
				}
			}
			return nil
		},
	}
}
