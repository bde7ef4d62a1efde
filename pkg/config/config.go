// Package config loads askcache configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/askcache-io/askcache/pkg/normalize"
	"github.com/askcache-io/askcache/pkg/similarity"
)

// Similarity strategy names accepted in config.
const (
	StrategyLevenshtein  = "levenshtein"
	StrategyTokenOverlap = "token-overlap"
)

// Config holds all askcache configuration.
type Config struct {
	Listen     string           `yaml:"listen"`
	DBPath     string           `yaml:"db_path"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
	Similarity SimilarityConfig `yaml:"similarity"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Sync       SyncConfig       `yaml:"sync"`
}

// NormalizerConfig controls question canonicalization.
type NormalizerConfig struct {
	// ExtraLetters are extended Latin letters preserved during
	// normalization, on top of ASCII word characters.
	ExtraLetters string `yaml:"extra_letters"`
}

// SimilarityConfig selects a matching strategy per context: the client
// orchestrator (CLI ask) and the HTTP API use different defaults.
type SimilarityConfig struct {
	Client StrategyConfig `yaml:"client"`
	Server StrategyConfig `yaml:"server"`
}

// StrategyConfig names a scorer strategy and optionally overrides its
// threshold. A zero threshold means the strategy default.
type StrategyConfig struct {
	Strategy  string  `yaml:"strategy"`
	Threshold float64 `yaml:"threshold"`
}

// UpstreamConfig defines the external answer capability.
type UpstreamConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// SyncConfig controls remote state synchronization. Remote is "none",
// "jsonbin" or "s3".
type SyncConfig struct {
	Remote  string        `yaml:"remote"`
	JSONBin JSONBinConfig `yaml:"jsonbin"`
	S3      S3Config      `yaml:"s3"`
}

// JSONBinConfig configures the jsonbin.io-compatible remote blob.
type JSONBinConfig struct {
	URL     string `yaml:"url"`
	APIKey  string `yaml:"api_key"`
	BinName string `yaml:"bin_name"`
}

// S3Config configures the S3 remote blob.
type S3Config struct {
	Bucket string `yaml:"bucket"`
	Key    string `yaml:"key"`
	Region string `yaml:"region"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		DBPath: "askcache.db",
		Normalizer: NormalizerConfig{
			ExtraLetters: normalize.DefaultExtraLetters,
		},
		Similarity: SimilarityConfig{
			Client: StrategyConfig{Strategy: StrategyLevenshtein},
			Server: StrategyConfig{Strategy: StrategyTokenOverlap},
		},
		Upstream: UpstreamConfig{
			URL:   "https://api.openai.com",
			Model: "gpt-4o-mini",
		},
		Sync: SyncConfig{
			Remote: "none",
			JSONBin: JSONBinConfig{
				URL:     "https://api.jsonbin.io/v3",
				BinName: "askcache-state",
			},
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Scorer builds the similarity scorer for a strategy config.
func (c StrategyConfig) Scorer() (similarity.Scorer, error) {
	switch c.Strategy {
	case StrategyLevenshtein:
		if c.Threshold > 0 {
			return similarity.NewLevenshteinWithThreshold(c.Threshold), nil
		}
		return similarity.NewLevenshtein(), nil
	case StrategyTokenOverlap:
		if c.Threshold > 0 {
			return similarity.NewTokenOverlapWithThreshold(c.Threshold), nil
		}
		return similarity.NewTokenOverlap(), nil
	default:
		return nil, fmt.Errorf("unknown similarity strategy %q", c.Strategy)
	}
}
