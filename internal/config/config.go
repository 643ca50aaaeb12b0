// Package config provides the configuration schema and loader for the
// voxmate server.
package config

import (
	"time"

	"github.com/voxmate/voxmate/internal/autoplay"
)

// LogLevel controls log verbosity for the voxmate server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for voxmate.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Engine   EngineConfig   `yaml:"engine"`
	Explorer ExplorerConfig `yaml:"explorer"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Autoplay AutoplayConfig `yaml:"autoplay"`
	Voice    VoiceConfig    `yaml:"voice"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// EngineConfig configures the UCI analysis engine subprocess.
type EngineConfig struct {
	// Command is the engine binary to spawn, e.g. "stockfish". When empty
	// the server runs without an analysis source: autoplay degrades to
	// book-only and the analysis endpoints return 503.
	Command string `yaml:"command"`

	// Threads is the engine's Threads option. Zero means 2.
	Threads int `yaml:"threads"`

	// Depth is the default search depth for session analysis. Zero means 15.
	Depth int `yaml:"depth"`

	// MultiPV is the default number of candidate moves requested. Zero means 5.
	MultiPV int `yaml:"multipv"`

	// Options holds extra UCI options set during the handshake, e.g.
	// Hash: "256".
	Options map[string]string `yaml:"options"`
}

// ExplorerConfig configures the master-games statistics source.
type ExplorerConfig struct {
	// BaseURL overrides the Lichess masters explorer endpoint. Empty uses
	// the public endpoint.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds one explorer HTTP request. Zero means 5s.
	Timeout time.Duration `yaml:"timeout"`

	// Cache configures the optional Redis response cache. When nil,
	// lookups always go to the network.
	Cache *ExplorerCacheConfig `yaml:"cache"`
}

// ExplorerCacheConfig configures the Redis explorer cache.
type ExplorerCacheConfig struct {
	// RedisURL is a redis:// connection URL.
	RedisURL string `yaml:"redis_url"`

	// TTL is how long a cached position lives. Zero means no expiry.
	TTL time.Duration `yaml:"ttl"`
}

// ArchiveConfig configures the finished-game archive.
type ArchiveConfig struct {
	// PostgresDSN is the archive database connection string. When empty,
	// finished games are not persisted.
	PostgresDSN string `yaml:"postgres_dsn"`
}

// AutoplayConfig configures autoplay defaults.
type AutoplayConfig struct {
	// DefaultStrength is the strength tier new sessions start at.
	// Zero means 2000. Valid values: 1000, 1500, 2000, 2500.
	DefaultStrength int `yaml:"default_strength"`
}

// VoiceConfig configures spoken output defaults.
type VoiceConfig struct {
	// MuteAnnouncements starts sessions with spoken move announcements
	// off. Users can still toggle sound by voice.
	MuteAnnouncements bool `yaml:"mute_announcements"`
}

// Strength returns the configured default strength tier.
func (a AutoplayConfig) Strength() autoplay.Strength {
	if a.DefaultStrength == 0 {
		return autoplay.DefaultStrength
	}
	return autoplay.Strength(a.DefaultStrength)
}
