package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "stridekit/internal/platform/errors"
)

const dirName = ".stridekit"

type Config struct {
	DataDir        string          `yaml:"-"`
	DBPath         string          `yaml:"-"`
	NotesDir       string          `yaml:"-"`
	ConfigPath     string          `yaml:"-"`
	AutoAnalyze    bool            `yaml:"auto_analyze"`
	DefaultSeconds int             `yaml:"default_duration_seconds"`
	LogLevel       string          `yaml:"log_level"`
	LogFile        string          `yaml:"log_file"`
	Simulator      SimulatorConfig `yaml:"simulator"`
}

// SimulatorConfig tunes the in-process motion SDK stand-in.
type SimulatorConfig struct {
	CapSeconds     int    `yaml:"cap_seconds"`
	StageMillis    int    `yaml:"stage_millis"`
	StepsPerSecond int    `yaml:"steps_per_second"`
	ForceOutcome   string `yaml:"force_outcome"` // "", "empty", "partial", "full", "recorder_error", "analysis_error"
}

func Default(dataDir string) Config {
	base := filepath.Join(dataDir, dirName)
	return Config{
		DataDir:        dataDir,
		DBPath:         filepath.Join(base, "stridekit.db"),
		NotesDir:       filepath.Join(base, "measurements"),
		ConfigPath:     filepath.Join(base, "config.yaml"),
		AutoAnalyze:    true,
		DefaultSeconds: 60,
		LogLevel:       "info",
		Simulator: SimulatorConfig{
			CapSeconds:     360,
			StageMillis:    800,
			StepsPerSecond: 2,
		},
	}
}

// New resolves paths under dataDir and overlays .stridekit/config.yaml when present.
func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := Default(dataDir)
	payload, err := os.ReadFile(cfg.ConfigPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DefaultSeconds <= 0 {
		return fmt.Errorf("%w: default_duration_seconds must be positive", apperrors.ErrInvalidInput)
	}
	switch strings.ToLower(c.LogLevel) {
	case "trace", "debug", "info", "warn", "error", "off":
	default:
		return fmt.Errorf("%w: unknown log_level %q", apperrors.ErrInvalidInput, c.LogLevel)
	}
	if c.Simulator.CapSeconds <= 0 || c.Simulator.StageMillis < 0 || c.Simulator.StepsPerSecond < 0 {
		return fmt.Errorf("%w: simulator settings out of range", apperrors.ErrInvalidInput)
	}
	switch c.Simulator.ForceOutcome {
	case "", "empty", "partial", "full", "recorder_error", "analysis_error":
	default:
		return fmt.Errorf("%w: unknown simulator.force_outcome %q", apperrors.ErrInvalidInput, c.Simulator.ForceOutcome)
	}
	return nil
}
