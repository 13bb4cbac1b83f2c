// Package config handles configuration loading for trendctx.
// It supports YAML config files with environment variable overrides and
// picks up API credentials from a .env file when one is present.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Sources  SourcesConfig  `mapstructure:"sources"  yaml:"sources"`
	Scoring  ScoringConfig  `mapstructure:"scoring"  yaml:"scoring"`
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// SourcesConfig enables and configures the trend source adapters.
type SourcesConfig struct {
	Static        StaticConfig `mapstructure:"static"         yaml:"static"`
	RSS           RSSConfig    `mapstructure:"rss"            yaml:"rss"`
	CoinMarketCap CMCConfig    `mapstructure:"coinmarketcap"  yaml:"coinmarketcap"`
}

// StaticConfig controls the built-in fixture source.
type StaticConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// RSSConfig controls the RSS news source.
type RSSConfig struct {
	Enabled bool         `mapstructure:"enabled" yaml:"enabled"`
	Feeds   []FeedConfig `mapstructure:"feeds"   yaml:"feeds"`
}

// FeedConfig describes one RSS feed.
type FeedConfig struct {
	Name     string `mapstructure:"name"     yaml:"name"`
	URL      string `mapstructure:"url"      yaml:"url"`
	Category string `mapstructure:"category" yaml:"category"` // optional
}

// CMCConfig controls the CoinMarketCap source.
type CMCConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
}

// ScoringConfig selects and tunes the default scorer strategy.
type ScoringConfig struct {
	Strategy string  `mapstructure:"strategy" yaml:"strategy"` // "log" or "linear"
	Ceiling  float64 `mapstructure:"ceiling"  yaml:"ceiling"`  // log: signal mapped to 100; 0 → scorer default
	Divisor  float64 `mapstructure:"divisor"  yaml:"divisor"`  // linear: signal scale divisor
}

// PipelineConfig holds aggregation and filtering settings.
type PipelineConfig struct {
	MinScore         float64 `mapstructure:"min_score"          yaml:"min_score"`
	MaxTrends        int     `mapstructure:"max_trends"         yaml:"max_trends"`
	MaxKeywords      int     `mapstructure:"max_keywords"       yaml:"max_keywords"`
	FetchLimit       int     `mapstructure:"fetch_limit"        yaml:"fetch_limit"`
	SourceTimeoutSec int     `mapstructure:"source_timeout_sec" yaml:"source_timeout_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.trendctx/config.yaml (home directory)
//  3. /etc/trendctx/config.yaml (system)
//
// Environment variables override config file values.
// Format: TRENDCTX_<SECTION>_<KEY>, e.g., TRENDCTX_PIPELINE_MIN_SCORE.
func Load() (*Config, error) {
	// Credentials may live in a local .env file; absence is fine.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".trendctx"))
	v.AddConfigPath("/etc/trendctx")

	v.SetEnvPrefix("TRENDCTX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — defaults plus env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("TRENDCTX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Sources: the static adapter works offline, live sources are opt-in.
	v.SetDefault("sources.static.enabled", true)
	v.SetDefault("sources.rss.enabled", false)
	v.SetDefault("sources.coinmarketcap.enabled", false)

	// Scoring defaults: log compression with the scorer's own ceiling.
	v.SetDefault("scoring.strategy", "log")
	v.SetDefault("scoring.ceiling", 0.0)
	v.SetDefault("scoring.divisor", 10000.0)

	// Pipeline defaults.
	v.SetDefault("pipeline.min_score", 50.0)
	v.SetDefault("pipeline.max_trends", 10)
	v.SetDefault("pipeline.max_keywords", 10)
	v.SetDefault("pipeline.fetch_limit", 100)
	v.SetDefault("pipeline.source_timeout_sec", 30)

	// Logging defaults.
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment
// variables, including the bare name CoinMarketCap documents.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("TRENDCTX_SOURCES_COINMARKETCAP_API_KEY"); key != "" {
		cfg.Sources.CoinMarketCap.APIKey = key
	}
	if key := os.Getenv("COINMARKETCAP_API_KEY"); key != "" {
		cfg.Sources.CoinMarketCap.APIKey = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
