package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}

	// Re-initialization replaces the handler without error.
	err = Init()
	if err != nil {
		t.Fatalf("failed to re-initialize logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after re-initialization")
	}
}

func TestLoggerBasic(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	logger := Get()
	ctx := context.Background()
	logger.Info(ctx, "test message", String("k", "v"))
	logger.Debug(ctx, "debug message", Int("n", 1))
	logger.Warn(ctx, "warn message", Float64("f", 1.5))
	logger.Error(ctx, "error message", Bool("b", true), Any("x", struct{}{}))
}

func TestLoggerNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	named := Named("pipeline")
	if named == nil {
		t.Fatal("named logger is nil")
	}
	named.Info(context.Background(), "named message")
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"DEBUG":   slog.LevelDebug,
	}
	for input, want := range cases {
		if err := SetLevelString(input); err != nil {
			t.Fatalf("SetLevelString(%q) returned error: %v", input, err)
		}
		if got := levelVar.Level(); got != want {
			t.Errorf("SetLevelString(%q): level = %v, want %v", input, got, want)
		}
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Error("SetLevelString accepted an unknown level")
	}
}
