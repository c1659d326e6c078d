// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestSlogHandler_WritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	defer Init(DefaultConfig())

	logger := NewSlogLogger().With("supervisor", "root").WithGroup("event")
	logger.Warn("service restarted",
		"service", "http-server",
		"failures", 2,
		"backoff", 15*time.Second,
		"err", errors.New("listener closed"),
	)

	out := buf.String()
	for _, want := range []string{
		`"level":"warn"`,
		`"supervisor":"root"`,
		`"event.service":"http-server"`,
		`"event.failures":2`,
		`"event.err":"listener closed"`,
		`"message":"service restarted"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output, got: %s", want, out)
		}
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	Init(Config{Level: "warn", Output: &buf})
	defer Init(DefaultConfig())

	h := NewSlogHandler()
	if h.Enabled(t.Context(), slog.LevelInfo) {
		t.Error("expected info to be disabled at warn level")
	}
	if !h.Enabled(t.Context(), slog.LevelError) {
		t.Error("expected error to be enabled at warn level")
	}
}
