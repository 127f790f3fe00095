package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"stridekit/internal/platform/config"
	apperrors "stridekit/internal/platform/errors"
)

func TestNewWithoutFileUsesDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !cfg.AutoAnalyze || cfg.DefaultSeconds != 60 || cfg.Simulator.CapSeconds != 360 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.DBPath != filepath.Join(dir, ".stridekit", "stridekit.db") {
		t.Fatalf("db path = %s", cfg.DBPath)
	}
}

func TestNewOverlaysYAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeConfig(t, dir, "auto_analyze: false\ndefault_duration_seconds: 45\nlog_level: debug\nsimulator:\n  force_outcome: partial\n")
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if cfg.AutoAnalyze || cfg.DefaultSeconds != 45 || cfg.LogLevel != "debug" {
		t.Fatalf("overlay ignored: %+v", cfg)
	}
	if cfg.Simulator.ForceOutcome != "partial" || cfg.Simulator.StepsPerSecond != 2 {
		t.Fatalf("simulator overlay wrong: %+v", cfg.Simulator)
	}
}

func TestNewRejectsInvalidValues(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{
		"default_duration_seconds: 0\n",
		"log_level: loud\n",
		"simulator:\n  force_outcome: maybe\n",
	} {
		dir := t.TempDir()
		writeConfig(t, dir, raw)
		if _, err := config.New(dir); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("%q: expected invalid input, got %v", raw, err)
		}
	}
}

func writeConfig(t *testing.T, dir, raw string) {
	t.Helper()
	base := filepath.Join(dir, ".stridekit")
	if err := os.MkdirAll(base, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(base, "config.yaml"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
