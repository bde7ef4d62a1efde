package main

import (
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/askcache-io/askcache/pkg/answer"
	"github.com/askcache-io/askcache/pkg/engine"
)

func newAskCmd() *cobra.Command {
	var (
		configPath string
		noSync     bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question, cache-first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			question := strings.Join(args, " ")

			a, err := openApp(ctx, configPath, true)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			client := answer.NewClient(a.cfg.Upstream.URL, a.cfg.Upstream.APIKey, a.cfg.Upstream.Model)
			eng := engine.New(a.store, a.stats)

			res, err := eng.Ask(ctx, question, client.Func())
			if err != nil {
				return err
			}

			if err := a.gateway.SaveLocal(ctx); err != nil {
				return err
			}
			if !noSync {
				if err := a.gateway.PushRemote(ctx); err != nil {
					log.WithError(err).Warn("remote push failed")
				}
			}

			if res.FromCache {
				log.WithField("cachedAt", res.Timestamp.Format("2006-01-02 15:04:05")).Info("answered from cache")
			}
			fmt.Println(res.Answer)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().BoolVar(&noSync, "no-sync", false, "skip the remote push after answering")
	return cmd
}
