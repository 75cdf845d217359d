package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/optsim/server"
)

func newServeCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pricer and simulator over HTTP",
		Long: `Start the HTTP API. It runs until interrupted.

Endpoints:
  POST /api/v1/price
  POST /api/v1/simulate
  POST /api/v1/chart
  GET  /api/v1/quote/:symbol
  GET  /api/v1/stream (websocket)

Example:
  optsim serve --config optsim.yaml --addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, closer, err := a.provider()
			if err != nil {
				return err
			}
			defer closer.Close()

			opts, err := server.OptionsFromConfig(a.cfg, p, a.log)
			if err != nil {
				return err
			}
			return server.New(opts).Run(cmd.Context())
		},
	}
	c.Flags().String("addr", "", "listen address, e.g. :8080")
	bindKey(c.Flags(), "addr", "server.addr")
	return c
}
