package main

import (
	"fmt"
	"time"

	"github.com/nvandessel/conjoint/internal/session"
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "List stored runs, or show one design or simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			runner, cleanup, err := openRunner(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			if len(args) == 1 {
				return showRun(cmd, runner, args[0], jsonOut)
			}

			runs, err := runner.Store.ListRuns(ctx)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, map[string]any{"runs": runs, "count": len(runs)})
			}

			w := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(w, "No runs yet. Run 'conjoint design <study-file>' first.")
				return nil
			}
			fmt.Fprintf(w, "%-12s %-10s %-20s %-12s %-10s %8s  %s\n", "ID", "KIND", "STUDY", "DESIGN", "DETAIL", "ROWS", "CREATED")
			for _, r := range runs {
				detail := r.Method
				if r.Kind != "design" {
					detail = r.Driver
				}
				fmt.Fprintf(w, "%-12s %-10s %-20s %-12s %-10s %8d  %s\n",
					r.ID, r.Kind, r.Study, r.DesignID, detail, r.Rows, r.CreatedAt.Local().Format(time.DateTime))
			}
			return nil
		},
	}
	return cmd
}

// showRun prints one run; d- IDs are designs and r- IDs simulations.
func showRun(cmd *cobra.Command, runner *session.Runner, id string, jsonOut bool) error {
	ctx := cmd.Context()
	if len(id) > 2 && id[:2] == "r-" {
		run, err := runner.Store.GetResponses(ctx, id)
		if err != nil {
			return err
		}
		if jsonOut {
			return writeJSON(cmd, session.NewResponseView(run))
		}
		printResponses(cmd.OutOrStdout(), run)
		return nil
	}

	run, err := runner.Store.GetDesign(ctx, id)
	if err != nil {
		return err
	}
	if jsonOut {
		return writeJSON(cmd, session.NewDesignView(run))
	}
	printDesign(cmd.OutOrStdout(), run)
	return nil
}
