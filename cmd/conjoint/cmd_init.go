package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/conjoint/internal/store"
	"github.com/nvandessel/conjoint/internal/study"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create .conjoint/ and an example study file in the project root",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			studyName, _ := cmd.Flags().GetString("study")

			runStore, err := store.NewSQLiteRunStore(root)
			if err != nil {
				return fmt.Errorf("failed to initialize run store: %w", err)
			}
			dbPath := runStore.Path()
			if err := runStore.Close(); err != nil {
				return fmt.Errorf("failed to close run store: %w", err)
			}

			studyPath := filepath.Join(root, studyName)
			created := false
			if _, err := os.Stat(studyPath); errors.Is(err, os.ErrNotExist) {
				data, err := study.EncodeYAML(study.Example())
				if err != nil {
					return fmt.Errorf("failed to encode example study: %w", err)
				}
				if err := os.WriteFile(studyPath, data, 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", studyName, err)
				}
				created = true
			}

			if jsonOut {
				return writeJSON(cmd, map[string]any{
					"status":        "initialized",
					"path":          store.DataDir(root),
					"database":      dbPath,
					"study":         studyPath,
					"study_created": created,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Initialized %s\n", store.DataDir(root))
			if created {
				fmt.Fprintf(out, "Wrote example study to %s\n", studyPath)
			}
			fmt.Fprintf(out, "\nNext: conjoint design %s\n", studyName)
			return nil
		},
	}

	cmd.Flags().String("study", "study.yaml", "Example study file to create (relative to root)")
	return cmd
}
