// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

// Package config loads Ankibridge configuration.
//
// Values are layered with koanf: built-in defaults, then an optional YAML
// file (CONFIG_PATH or config.yaml), then environment variables. Call Load
// once at startup; the returned Config has already been validated.
package config

import "time"

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Media    MediaConfig    `koanf:"media"`
	Fetch    FetchConfig    `koanf:"fetch"`
	Security SecurityConfig `koanf:"security"`
	Browse   BrowseConfig   `koanf:"browse"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `koanf:"port"`
	Host         string        `koanf:"host"`
	Timeout      time.Duration `koanf:"timeout"`
	MaxBodyBytes int64         `koanf:"max_body_bytes"` // base64 media makes large envelopes common
}

// DatabaseConfig holds DuckDB note store settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()

	// SeedDefaults creates the "Default" deck and the "Basic" note type
	// (Front, Back) on first start.
	SeedDefaults bool `koanf:"seed_defaults"`

	// CheckpointInterval is how often the WAL is folded into the database
	// file. Zero disables the periodic checkpoint.
	CheckpointInterval time.Duration `koanf:"checkpoint_interval"`
}

// MediaConfig holds media folder settings.
type MediaConfig struct {
	Dir       string `koanf:"dir"`
	IndexPath string `koanf:"index_path"` // badger content index; empty = in-memory
	MaxBytes  int64  `koanf:"max_bytes"`

	// GCInterval is how often the index value log is garbage collected.
	// Zero disables it.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// FetchConfig controls downloads of media referenced by URL.
type FetchConfig struct {
	Timeout         time.Duration `koanf:"timeout"`
	MaxBytes        int64         `koanf:"max_bytes"`
	RatePerSecond   float64       `koanf:"rate_per_second"`
	Burst           int           `koanf:"burst"`
	UserAgent       string        `koanf:"user_agent"`
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// SecurityConfig holds the permission gate and HTTP protection settings.
type SecurityConfig struct {
	// APIKey, when set, must be sent as "key" in every envelope except
	// requestPermission. APIKeyHash is the bcrypt alternative.
	APIKey     string `koanf:"api_key"`
	APIKeyHash string `koanf:"api_key_hash"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// BrowseConfig controls where guiBrowse requests go.
type BrowseConfig struct {
	// Command is executed with the anki:// browse URL as its only argument,
	// e.g. "xdg-open". Empty disables the command sink.
	Command string `koanf:"command"`

	// Broadcast sends gui_browse messages to websocket clients.
	Broadcast bool `koanf:"broadcast"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// APIKeyRequired reports whether envelopes must carry a key.
func (c *Config) APIKeyRequired() bool {
	return c.Security.APIKey != "" || c.Security.APIKeyHash != ""
}

// Load reads configuration from defaults, the config file and the
// environment, in that order of increasing priority.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
