package main

import (
	"github.com/nvandessel/conjoint/internal/serve"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the design and simulation HTTP API",
		Long: `Serve a JSON HTTP API over the project's run store:

  GET  /healthz
  GET  /runs
  POST /designs
  GET  /designs/{id}
  POST /designs/{id}/simulations
  GET  /simulations/{id}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := openRunner(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if cmd.Flags().Changed("listen") {
				runner.Config.Server.Listen, _ = cmd.Flags().GetString("listen")
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return serve.New(runner).ListenAndServe(ctx)
		},
	}

	cmd.Flags().String("listen", "", "Address to listen on (default from config, 127.0.0.1:8740)")
	return cmd
}
