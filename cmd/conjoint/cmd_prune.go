package main

import (
	"fmt"

	"github.com/nvandessel/conjoint/internal/store"
	"github.com/spf13/cobra"
)

func newPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove old exported study folders",
		Long: `Remove folders under .conjoint/studies/ that no retention rule keeps.
A folder survives if it is among the --keep most recent or younger than
--max-age. Stored runs in the database are not touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			keep, _ := cmd.Flags().GetInt("keep")
			maxAge, _ := cmd.Flags().GetString("max-age")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			if keep < 0 {
				return fmt.Errorf("--keep must be non-negative, got %d", keep)
			}
			policies := []store.RetentionPolicy{&store.CountPolicy{MaxCount: keep}}
			if maxAge != "" {
				age, err := store.ParseAge(maxAge)
				if err != nil {
					return fmt.Errorf("--max-age: %w", err)
				}
				policies = append(policies, &store.AgePolicy{MaxAge: age})
			}

			removed, err := store.PruneStudyFolders(root, &store.CompositePolicy{Policies: policies}, dryRun)
			if err != nil {
				return err
			}

			if jsonOut {
				paths := make([]string, len(removed))
				for i, f := range removed {
					paths[i] = f.Path
				}
				return writeJSON(cmd, map[string]any{"removed": paths, "dry_run": dryRun})
			}

			w := cmd.OutOrStdout()
			verb := "Removed"
			if dryRun {
				verb = "Would remove"
			}
			if len(removed) == 0 {
				fmt.Fprintln(w, "Nothing to prune")
				return nil
			}
			for _, f := range removed {
				fmt.Fprintf(w, "%s %s (%s)\n", verb, f.Path, f.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().Int("keep", 10, "Number of most recent study folders to keep")
	cmd.Flags().String("max-age", "", "Also keep folders younger than this (e.g. 30d, 2w, 72h)")
	cmd.Flags().Bool("dry-run", false, "List folders without removing them")
	return cmd
}
