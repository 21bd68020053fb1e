package main

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/transitionkit/pkg/httpserver"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve health probes and Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.HTTP.Addr = addr
			}

			rt, err := openRuntimeWith(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(rt.Logger()))
			return srv.Run(cmd.Context(), rt.OpsHandler())
		},
	}
	cmd.Flags().String("addr", "", "listen address, overrides OPS_HTTP_ADDR")
	return cmd
}
