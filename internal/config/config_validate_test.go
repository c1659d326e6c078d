// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty database path", func(c *Config) { c.Database.Path = " " }, "DUCKDB_PATH"},
		{"empty media dir", func(c *Config) { c.Media.Dir = "" }, "MEDIA_DIR"},
		{"fetch timeout too short", func(c *Config) { c.Fetch.Timeout = time.Millisecond }, "FETCH_TIMEOUT"},
		{"zero burst", func(c *Config) { c.Fetch.Burst = 0 }, "FETCH_BURST"},
		{"both keys", func(c *Config) {
			c.Security.APIKey = "abc"
			c.Security.APIKeyHash = "$2a$10$abc"
		}, "only one"},
		{"placeholder key", func(c *Config) { c.Security.APIKey = "changeme" }, "placeholder"},
		{"hash not bcrypt", func(c *Config) { c.Security.APIKeyHash = "sha256:abc" }, "bcrypt"},
		{"rate limit window", func(c *Config) { c.Security.RateLimitWindow = 2 * time.Hour }, "RATE_LIMIT_WINDOW"},
		{"rate limit disabled skips bounds", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestShouldWarnAboutCORS(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Security.CORSOrigins = []string{"*"}
	if !cfg.ShouldWarnAboutCORS() {
		t.Error("expected warning for wildcard CORS without API key")
	}
	cfg.Security.APIKey = "k3y"
	if cfg.ShouldWarnAboutCORS() {
		t.Error("expected no warning once an API key is required")
	}
}
