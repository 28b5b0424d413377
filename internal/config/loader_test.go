package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("REFLEX_CONFIG")
	os.Unsetenv("REFLEX_ADDR")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("expected default addr :9090, got %q", cfg.Addr)
	}
	if cfg.MaxLeaderboardLimit != 100 {
		t.Errorf("expected default max limit 100, got %d", cfg.MaxLeaderboardLimit)
	}
	if cfg.RateLimit != 30 {
		t.Errorf("expected default rate limit 30, got %d", cfg.RateLimit)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("REFLEX_ADDR", ":7070")
	t.Setenv("REFLEX_RATE_LIMIT", "5")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Errorf("expected env addr :7070, got %q", cfg.Addr)
	}
	if cfg.RateLimit != 5 {
		t.Errorf("expected env rate limit 5, got %d", cfg.RateLimit)
	}
}

func TestLoadFileThenEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reflex.yaml")
	body := "addr: \":6060\"\nretention_days: 7\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("REFLEX_CONFIG", path)
	t.Setenv("REFLEX_ADDR", ":6161")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RetentionDays != 7 {
		t.Errorf("expected file retention_days 7, got %d", cfg.RetentionDays)
	}
	if cfg.Addr != ":6161" {
		t.Errorf("env should win over file, got addr %q", cfg.Addr)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("REFLEX_MAX_LEADERBOARD_LIMIT", "0")

	if _, err := Load(context.Background()); err == nil {
		t.Fatal("expected validation error for zero limit")
	}
}
