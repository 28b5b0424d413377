package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestInitAndLevels(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	l := Get()
	if l == nil {
		t.Fatal("expected non-nil logger")
	}

	// Named loggers should be independent instances.
	named := l.Named("store")
	if named == nil {
		t.Fatal("expected non-nil named logger")
	}

	// Logging must not panic at any level.
	ctx := context.Background()
	named.Debug(ctx, "debug msg", String("k", "v"))
	named.Info(ctx, "info msg", Int("n", 1))
	named.Warn(ctx, "warn msg", Float64("f", 1.5))
	named.Error(ctx, "error msg", Bool("b", true))
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"ERROR":   slog.LevelError,
	}
	for in, want := range cases {
		if err := SetLevelString(in); err != nil {
			t.Errorf("SetLevelString(%q) returned error: %v", in, err)
		}
		if got := levelVar.Level(); got != want {
			t.Errorf("SetLevelString(%q) set %v, want %v", in, got, want)
		}
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}
