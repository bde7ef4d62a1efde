package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/askcache-io/askcache/pkg/config"
	"github.com/askcache-io/askcache/pkg/normalize"
	"github.com/askcache-io/askcache/pkg/stats"
	"github.com/askcache-io/askcache/pkg/store"
	"github.com/askcache-io/askcache/pkg/syncer"
)

const defaultConfigPath = "askcache.yaml"

// app bundles everything a command needs: configuration, the in-memory
// store and counters, and the persistence gateway over the slot database.
type app struct {
	cfg     *config.Config
	store   *store.Store
	stats   *stats.Tracker
	slots   *syncer.SlotStore
	gateway *syncer.Gateway
}

// openApp loads config, builds the store with the context's similarity
// strategy (client for the CLI ask path, server for the HTTP API) and
// restores persisted state from the slot database.
func openApp(ctx context.Context, configPath string, clientSide bool) (*app, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	strategy := cfg.Similarity.Server
	if clientSide {
		strategy = cfg.Similarity.Client
	}
	scorer, err := strategy.Scorer()
	if err != nil {
		return nil, err
	}

	st := store.New(normalize.New(cfg.Normalizer.ExtraLetters), scorer)
	tr := stats.New()

	slots, err := syncer.OpenSlots(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	blob, err := buildBlob(ctx, cfg)
	if err != nil {
		slots.Close()
		return nil, err
	}

	gw := syncer.NewGateway(slots, blob, st, tr)
	if err := gw.Load(ctx); err != nil {
		slots.Close()
		return nil, err
	}

	return &app{cfg: cfg, store: st, stats: tr, slots: slots, gateway: gw}, nil
}

func (a *app) Close() error {
	return a.slots.Close()
}

// loadConfig falls back to defaults when no config file is present, so
// the CLI works out of the box.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return config.Load(path)
}

func buildBlob(ctx context.Context, cfg *config.Config) (syncer.Blob, error) {
	switch cfg.Sync.Remote {
	case "", "none":
		return nil, nil
	case "jsonbin":
		return syncer.NewJSONBin(cfg.Sync.JSONBin.URL, cfg.Sync.JSONBin.APIKey, cfg.Sync.JSONBin.BinName), nil
	case "s3":
		return syncer.NewS3Blob(ctx, cfg.Sync.S3.Bucket, cfg.Sync.S3.Key, cfg.Sync.S3.Region)
	default:
		return nil, fmt.Errorf("unknown sync remote %q", cfg.Sync.Remote)
	}
}
