package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/voxmate/voxmate/internal/autoplay"
	"github.com/voxmate/voxmate/internal/config"
)

const sampleYAML = `
server:
  listen_addr: ":9090"
  log_level: debug
engine:
  command: stockfish
  threads: 4
  depth: 18
  multipv: 6
explorer:
  timeout: 3s
  cache:
    redis_url: redis://localhost:6379/0
    ttl: 6h
archive:
  postgres_dsn: postgres://voxmate@localhost/voxmate
autoplay:
  default_strength: 1500
`

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("LogLevel = %q", cfg.Server.LogLevel)
	}
	if cfg.Engine.Command != "stockfish" || cfg.Engine.Depth != 18 || cfg.Engine.MultiPV != 6 {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
	if cfg.Explorer.Timeout != 3*time.Second {
		t.Errorf("Explorer.Timeout = %s", cfg.Explorer.Timeout)
	}
	if cfg.Explorer.Cache == nil || cfg.Explorer.Cache.TTL != 6*time.Hour {
		t.Errorf("Explorer.Cache = %+v", cfg.Explorer.Cache)
	}
	if cfg.Autoplay.Strength() != autoplay.Strength1500 {
		t.Errorf("Autoplay strength = %v", cfg.Autoplay.Strength())
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()

	_, err := config.LoadFromReader(strings.NewReader("serverr:\n  listen_addr: \":1\"\n"))
	if err == nil {
		t.Fatal("unknown top-level field accepted")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"bad log level", func(c *config.Config) { c.Server.LogLevel = "loud" }, "server.log_level"},
		{"depth too deep", func(c *config.Config) { c.Engine.Depth = 99 }, "engine.depth"},
		{"multipv too wide", func(c *config.Config) { c.Engine.MultiPV = 50 }, "engine.multipv"},
		{"negative timeout", func(c *config.Config) { c.Explorer.Timeout = -time.Second }, "explorer.timeout"},
		{"cache without url", func(c *config.Config) { c.Explorer.Cache = &config.ExplorerCacheConfig{} }, "redis_url"},
		{"bad strength", func(c *config.Config) { c.Autoplay.DefaultStrength = 1234 }, "default_strength"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := &config.Config{}
			tc.mutate(cfg)
			err := config.Validate(cfg)
			if err == nil {
				t.Fatal("Validate accepted an invalid config")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}

	// Zero config is valid: everything has a default or degrades.
	if err := config.Validate(&config.Config{}); err != nil {
		t.Errorf("Validate(zero) = %v, want nil", err)
	}
}
