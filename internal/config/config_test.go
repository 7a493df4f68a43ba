package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.WebhookAddr != ":8090" {
		t.Errorf("expected default webhook addr :8090, got %s", cfg.WebhookAddr)
	}
	if cfg.DashboardPort != 8091 {
		t.Errorf("expected default dashboard port 8091, got %d", cfg.DashboardPort)
	}
	if cfg.SeedCount != 150 {
		t.Errorf("expected default seed count 150, got %d", cfg.SeedCount)
	}
	if cfg.SlotPath != filepath.Join(cfg.DataDir, "store.json") {
		t.Errorf("slot path not derived from data dir: %s", cfg.SlotPath)
	}
	if cfg.RemoteDSN != filepath.Join(cfg.DataDir, "remote.db") {
		t.Errorf("remote dsn not derived from data dir: %s", cfg.RemoteDSN)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `data_dir: /tmp/pulse-test
webhook_addr: ":9000"
dashboard_port: 9001
seed_count: 10
inbox_dir: /tmp/pulse-inbox
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.WebhookAddr != ":9000" {
		t.Errorf("webhook addr not read from file: %s", cfg.WebhookAddr)
	}
	if cfg.DashboardPort != 9001 {
		t.Errorf("dashboard port not read from file: %d", cfg.DashboardPort)
	}
	if cfg.SeedCount != 10 {
		t.Errorf("seed count not read from file: %d", cfg.SeedCount)
	}
	if cfg.SlotPath != filepath.Join("/tmp/pulse-test", "store.json") {
		t.Errorf("slot path not derived: %s", cfg.SlotPath)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Errorf("expected error for missing explicit config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PULSE_WEBHOOK_ADDR", ":7070")
	t.Setenv("PULSE_SEED_COUNT", "25")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.WebhookAddr != ":7070" {
		t.Errorf("env override ignored: %s", cfg.WebhookAddr)
	}
	if cfg.SeedCount != 25 {
		t.Errorf("env override ignored: %d", cfg.SeedCount)
	}
}

func TestAnthropicKeyFallsBackToStandardEnv(t *testing.T) {
	t.Setenv("PULSE_ANTHROPIC_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AnthropicAPIKey != "sk-test" {
		t.Errorf("standard env var not honored: %s", cfg.AnthropicAPIKey)
	}
}
