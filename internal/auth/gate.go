// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

// Package auth decides which clients may call the action endpoint.
//
// Two checks apply. The browser Origin must be in the allow list, and when
// an API key is configured each envelope must carry it. An empty Origin is
// a local non-browser client (curl, scripts) and passes the origin check.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/ankibridge/internal/config"
	"github.com/tomtom215/ankibridge/internal/models"
)

var (
	// ErrOriginDenied rejects browser origins outside the allow list.
	ErrOriginDenied = errors.New("origin is not allowed")

	// ErrInvalidKey is the AnkiConnect message for a missing or wrong key.
	ErrInvalidKey = errors.New("valid api key must be provided")
)

// Permission values of the requestPermission reply.
const (
	PermissionGranted = "granted"
	PermissionDenied  = "denied"
)

// Gate holds the origin allow list and the API key.
type Gate struct {
	allowAll bool
	origins  map[string]bool

	key  []byte
	hash []byte
}

// NewGate builds a Gate from the security settings.
func NewGate(cfg *config.SecurityConfig) (*Gate, error) {
	g := &Gate{origins: make(map[string]bool, len(cfg.CORSOrigins))}
	for _, o := range cfg.CORSOrigins {
		o = normalizeOrigin(o)
		if o == "*" {
			g.allowAll = true
			continue
		}
		if o != "" {
			g.origins[o] = true
		}
	}

	if cfg.APIKeyHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.APIKeyHash)); err != nil {
			return nil, fmt.Errorf("invalid api key hash: %w", err)
		}
		g.hash = []byte(cfg.APIKeyHash)
	}
	if cfg.APIKey != "" {
		g.key = []byte(cfg.APIKey)
	}
	return g, nil
}

// OriginAllowed reports whether a request with this Origin header may call
// actions.
func (g *Gate) OriginAllowed(origin string) bool {
	if origin == "" || g.allowAll {
		return true
	}
	return g.origins[normalizeOrigin(origin)]
}

// KeyRequired reports whether envelopes must carry a key.
func (g *Gate) KeyRequired() bool {
	return len(g.key) > 0 || len(g.hash) > 0
}

// CheckKey verifies an envelope key. It returns nil when no key is
// configured.
func (g *Gate) CheckKey(key string) error {
	if !g.KeyRequired() {
		return nil
	}
	if key == "" {
		return ErrInvalidKey
	}
	if len(g.key) > 0 && subtle.ConstantTimeCompare([]byte(key), g.key) == 1 {
		return nil
	}
	if len(g.hash) > 0 && bcrypt.CompareHashAndPassword(g.hash, []byte(key)) == nil {
		return nil
	}
	return ErrInvalidKey
}

// Authorize runs both checks for an action call.
func (g *Gate) Authorize(origin, key string) error {
	if !g.OriginAllowed(origin) {
		return fmt.Errorf("%w: %s", ErrOriginDenied, origin)
	}
	return g.CheckKey(key)
}

// RequestPermission answers the requestPermission action. It never needs a
// key: clients call it to learn whether they must send one.
func (g *Gate) RequestPermission(origin string) models.PermissionResult {
	if !g.OriginAllowed(origin) {
		return models.PermissionResult{Permission: PermissionDenied}
	}
	return models.PermissionResult{
		Permission:    PermissionGranted,
		RequireAPIKey: g.KeyRequired(),
		Version:       models.APIVersion,
	}
}

func normalizeOrigin(o string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(o)), "/")
}
