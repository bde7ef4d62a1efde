package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize state with the configured remote",
	}

	pushCmd := &cobra.Command{
		Use:   "push",
		Short: "Upload local state to the remote",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx, configPath, true)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if a.cfg.Sync.Remote == "" || a.cfg.Sync.Remote == "none" {
				return fmt.Errorf("no sync remote configured")
			}
			if err := a.gateway.PushRemote(ctx); err != nil {
				return err
			}
			fmt.Printf("Pushed %d questions to %s (%s).\n", a.store.Len(), a.cfg.Sync.Remote, a.gateway.BinID())
			return nil
		},
	}

	pullCmd := &cobra.Command{
		Use:   "pull",
		Short: "Replace local state with the remote copy",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx, configPath, true)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if a.cfg.Sync.Remote == "" || a.cfg.Sync.Remote == "none" {
				return fmt.Errorf("no sync remote configured")
			}
			ok, err := a.gateway.PullRemote(ctx)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("No remote state to pull.")
				return nil
			}
			fmt.Printf("Pulled %d questions from %s.\n", a.store.Len(), a.cfg.Sync.Remote)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.AddCommand(pushCmd, pullCmd)
	return cmd
}
