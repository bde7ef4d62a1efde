package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx, configPath, true)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			snap := a.stats.Snapshot()
			fmt.Printf("Questions:   %d\n", snap.TotalQuestions)
			fmt.Printf("Cache hits:  %d\n", snap.CacheHits)
			fmt.Printf("API calls:   %d\n", snap.APICalls)
			fmt.Printf("Stored:      %d\n", a.store.Len())
			fmt.Printf("Total usage: %d\n", a.store.TotalUsage())
			if id := a.gateway.BinID(); id != "" {
				fmt.Printf("Remote bin:  %s\n", id)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}
