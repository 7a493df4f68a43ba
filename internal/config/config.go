// Package config loads CLI and daemon settings.
//
// Settings resolve in the usual order: flags override environment
// variables (PULSE_*), which override the config file
// (~/.pulse/config.yaml or --config), which override defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the resolved settings.
type Config struct {
	// DataDir is the root directory for local state (default ~/.pulse).
	DataDir string `mapstructure:"data_dir"`

	// SlotPath is the JSON snapshot file (default <data_dir>/store.json).
	SlotPath string `mapstructure:"slot_path"`

	// RemoteDSN is the backend SQLite path or DSN
	// (default <data_dir>/remote.db). Empty disables sync.
	RemoteDSN string `mapstructure:"remote_dsn"`

	// WebhookAddr is the webhook HTTP listen address (default ":8090").
	WebhookAddr string `mapstructure:"webhook_addr"`

	// DashboardPort is the WebSocket dashboard port (default 8091).
	DashboardPort int `mapstructure:"dashboard_port"`

	// InboxDir is the ingest inbox directory. Empty disables the
	// inbox daemon.
	InboxDir string `mapstructure:"inbox_dir"`

	// SeedCount is how many feedbacks to generate on first run
	// (default 150).
	SeedCount int `mapstructure:"seed_count"`

	// SeedProfile is an optional TOML seed profile path. Empty uses
	// the built-in demo profile.
	SeedProfile string `mapstructure:"seed_profile"`

	// AnthropicAPIKey enables LLM sentiment classification when set.
	// Also read from ANTHROPIC_API_KEY.
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`

	// AnthropicModel overrides the classification model.
	AnthropicModel string `mapstructure:"anthropic_model"`

	// LogFile enables rotated file logging for long-running daemons.
	// Empty logs to stderr.
	LogFile string `mapstructure:"log_file"`
}

// Load resolves the configuration. cfgFile, when non-empty, names an
// explicit config file and missing-file errors become fatal.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(home, ".pulse")

	v.SetDefault("data_dir", dataDir)
	v.SetDefault("slot_path", "")
	v.SetDefault("remote_dsn", "")
	v.SetDefault("webhook_addr", ":8090")
	v.SetDefault("dashboard_port", 8091)
	v.SetDefault("inbox_dir", "")
	v.SetDefault("seed_count", 150)
	v.SetDefault("seed_profile", "")
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("anthropic_model", "")
	v.SetDefault("log_file", "")

	v.SetEnvPrefix("PULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dataDir)
		if err := v.ReadInConfig(); err != nil {
			// Missing default config is fine; anything else is not.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				if !os.IsNotExist(err) {
					return nil, fmt.Errorf("failed to read config file: %w", err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Derive paths the file/env left empty.
	if cfg.SlotPath == "" {
		cfg.SlotPath = filepath.Join(cfg.DataDir, "store.json")
	}
	if cfg.RemoteDSN == "" {
		cfg.RemoteDSN = filepath.Join(cfg.DataDir, "remote.db")
	}
	if cfg.AnthropicAPIKey == "" {
		cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	return &cfg, nil
}
