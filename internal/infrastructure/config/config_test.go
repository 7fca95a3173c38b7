package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTemp(t, `
[exchange.binance]
enabled = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level = %s", cfg.LogLevel)
	}
	if cfg.FanOut.Addr != "0.0.0.0:5555" {
		t.Fatalf("addr = %s", cfg.FanOut.Addr)
	}
	if cfg.Reconnect.DelaySeconds != 5 || cfg.Reconnect.MaxAttempts != 10 {
		t.Fatalf("reconnect defaults = %+v", cfg.Reconnect)
	}
	venues := cfg.EnabledVenues()
	if len(venues) != 1 || venues[0] != "Binance" {
		t.Fatalf("enabled venues = %v", venues)
	}
}

func TestLoadRejectsNoEnabledVenue(t *testing.T) {
	path := writeTemp(t, `
[fanout]
addr = "127.0.0.1:5555"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for no enabled venue")
	}
}
