// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/ankibridge/internal/config"
	"github.com/tomtom215/ankibridge/internal/models"
)

func TestOriginAllowed(t *testing.T) {
	g, err := NewGate(&config.SecurityConfig{CORSOrigins: []string{"http://localhost", "chrome-extension://abc/"}})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost", true},
		{"HTTP://LOCALHOST/", true},
		{"chrome-extension://abc", true},
		{"http://evil.example", false},
		{"http://localhost:3000", false},
	}
	for _, tt := range tests {
		if got := g.OriginAllowed(tt.origin); got != tt.want {
			t.Errorf("OriginAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}

	open, _ := NewGate(&config.SecurityConfig{CORSOrigins: []string{"*"}})
	if !open.OriginAllowed("http://anything.example") {
		t.Error("wildcard should allow every origin")
	}
}

func TestCheckKey_Plaintext(t *testing.T) {
	g, _ := NewGate(&config.SecurityConfig{APIKey: "s3cret"})

	if !g.KeyRequired() {
		t.Fatal("key should be required")
	}
	if err := g.CheckKey("s3cret"); err != nil {
		t.Errorf("correct key: %v", err)
	}
	for _, k := range []string{"", "s3cre", "s3cret!"} {
		if err := g.CheckKey(k); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("CheckKey(%q) = %v, want ErrInvalidKey", k, err)
		}
	}
}

func TestCheckKey_Bcrypt(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-key"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	g, err := NewGate(&config.SecurityConfig{APIKeyHash: string(hash)})
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	if err := g.CheckKey("hashed-key"); err != nil {
		t.Errorf("correct key: %v", err)
	}
	if err := g.CheckKey("wrong"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("wrong key: %v", err)
	}

	if _, err := NewGate(&config.SecurityConfig{APIKeyHash: "not-a-hash"}); err == nil {
		t.Error("malformed hash should be rejected")
	}
}

func TestCheckKey_NoKeyConfigured(t *testing.T) {
	g, _ := NewGate(&config.SecurityConfig{})
	if g.KeyRequired() {
		t.Error("no key configured")
	}
	if err := g.CheckKey("whatever"); err != nil {
		t.Errorf("CheckKey = %v, want nil", err)
	}
}

func TestAuthorize(t *testing.T) {
	g, _ := NewGate(&config.SecurityConfig{APIKey: "k", CORSOrigins: []string{"http://localhost"}})

	if err := g.Authorize("http://evil.example", "k"); !errors.Is(err, ErrOriginDenied) {
		t.Errorf("bad origin err = %v", err)
	}
	if err := g.Authorize("http://localhost", "x"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("bad key err = %v", err)
	}
	if err := g.Authorize("", "k"); err != nil {
		t.Errorf("local client err = %v", err)
	}
}

func TestRequestPermission(t *testing.T) {
	g, _ := NewGate(&config.SecurityConfig{APIKey: "k", CORSOrigins: []string{"http://localhost"}})

	got := g.RequestPermission("http://localhost")
	want := models.PermissionResult{Permission: PermissionGranted, RequireAPIKey: true, Version: models.APIVersion}
	if got != want {
		t.Errorf("granted = %+v, want %+v", got, want)
	}
	if got := g.RequestPermission("http://evil.example"); got.Permission != PermissionDenied || got.Version != 0 {
		t.Errorf("denied = %+v", got)
	}
}
