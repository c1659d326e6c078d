// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/ankibridge/config.yaml",
	"/etc/ankibridge/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8765, // AnkiConnect's port; clients hardcode it
			Host:         "127.0.0.1",
			Timeout:      30 * time.Second,
			MaxBodyBytes: 64 << 20,
		},
		Database: DatabaseConfig{
			Path:               "/data/ankibridge.duckdb",
			MaxMemory:          "512MB",
			Threads:            0,
			SeedDefaults:       true,
			CheckpointInterval: 5 * time.Minute,
		},
		Media: MediaConfig{
			Dir:        "/data/collection.media",
			IndexPath:  "/data/media-index",
			MaxBytes:   50 << 20,
			GCInterval: 10 * time.Minute,
		},
		Fetch: FetchConfig{
			Timeout:         20 * time.Second,
			MaxBytes:        50 << 20,
			RatePerSecond:   5,
			Burst:           10,
			UserAgent:       "ankibridge/1.0",
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"http://localhost"},
			RateLimitReqs:   600,
			RateLimitWindow: time.Minute,
		},
		Browse: BrowseConfig{
			Broadcast: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf builds the layered configuration and validates it.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// HTTP_PORT -> server.port, MEDIA_DIR -> media.dir, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths accept comma-separated strings from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"http_port":      "server.port",
	"http_host":      "server.host",
	"http_timeout":   "server.timeout",
	"max_body_bytes": "server.max_body_bytes",

	"duckdb_path":          "database.path",
	"duckdb_max_memory":    "database.max_memory",
	"duckdb_threads":       "database.threads",
	"seed_default_schemas": "database.seed_defaults",
	"checkpoint_interval":  "database.checkpoint_interval",

	"media_dir":         "media.dir",
	"media_index_path":  "media.index_path",
	"media_max_bytes":   "media.max_bytes",
	"media_gc_interval": "media.gc_interval",

	"fetch_timeout":          "fetch.timeout",
	"fetch_max_bytes":        "fetch.max_bytes",
	"fetch_rate_per_second":  "fetch.rate_per_second",
	"fetch_burst":            "fetch.burst",
	"fetch_user_agent":       "fetch.user_agent",
	"fetch_breaker_failures": "fetch.breaker_failures",
	"fetch_breaker_timeout":  "fetch.breaker_timeout",

	"api_key":             "security.api_key",
	"api_key_hash":        "security.api_key_hash",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"browse_command":   "browse.command",
	"browse_broadcast": "browse.broadcast",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unknown variables map to "" and are dropped by the provider.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
