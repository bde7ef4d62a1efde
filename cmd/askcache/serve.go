package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/askcache-io/askcache/pkg/server"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP cache API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, configPath, false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			a.gateway.Watch(ctx)

			return server.New(a.cfg, a.store, a.stats).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}
