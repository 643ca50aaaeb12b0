package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/voxmate/voxmate/internal/engine"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Engine.Command == "" {
		slog.Warn("engine.command is empty; analysis endpoints and the engine autoplay tier will be unavailable")
	}
	if cfg.Engine.Threads < 0 {
		errs = append(errs, fmt.Errorf("engine.threads %d is negative", cfg.Engine.Threads))
	}
	if d := cfg.Engine.Depth; d != 0 && (d < engine.MinDepth || d > engine.MaxDepth) {
		errs = append(errs, fmt.Errorf("engine.depth %d is out of range [%d, %d]", d, engine.MinDepth, engine.MaxDepth))
	}
	if n := cfg.Engine.MultiPV; n != 0 && (n < engine.MinTopMoves || n > engine.MaxTopMoves) {
		errs = append(errs, fmt.Errorf("engine.multipv %d is out of range [%d, %d]", n, engine.MinTopMoves, engine.MaxTopMoves))
	}

	if cfg.Explorer.Timeout < 0 {
		errs = append(errs, fmt.Errorf("explorer.timeout %s is negative", cfg.Explorer.Timeout))
	}
	if c := cfg.Explorer.Cache; c != nil {
		if c.RedisURL == "" {
			errs = append(errs, fmt.Errorf("explorer.cache.redis_url is required when explorer.cache is set"))
		}
		if c.TTL < 0 {
			errs = append(errs, fmt.Errorf("explorer.cache.ttl %s is negative", c.TTL))
		}
	}

	if cfg.Archive.PostgresDSN == "" {
		slog.Warn("archive.postgres_dsn is empty; finished games will not be persisted")
	}

	if !cfg.Autoplay.Strength().IsValid() {
		errs = append(errs, fmt.Errorf("autoplay.default_strength %d is invalid; valid values: 1000, 1500, 2000, 2500", cfg.Autoplay.DefaultStrength))
	}

	return errors.Join(errs...)
}

// SlogLevel maps the configured level to a slog.Level. Empty means info.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}
