package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClearCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached questions and statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx, configPath, true)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			count := a.store.Clear()
			a.stats.Reset()
			if err := a.gateway.Reset(ctx); err != nil {
				return err
			}

			fmt.Printf("Cleared %d cached questions.\n", count)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}
