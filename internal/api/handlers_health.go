// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ankibridge/internal/logging"
	"github.com/tomtom215/ankibridge/internal/models"
)

// StatusSource reports optional component state for the health endpoints.
type StatusSource interface {
	GetClientCount() int
}

// CircuitSource reports the remote fetch breaker state.
type CircuitSource interface {
	State() string
}

// SetStatusSources attaches the websocket hub and fetcher to the health
// report. Either may be nil.
func (h *Handler) SetStatusSources(clients StatusSource, circuit CircuitSource) {
	h.clients = clients
	h.circuit = circuit
}

// Banner answers GET / the way AnkiConnect does, so that clients probing
// for a running server find one.
func (h *Handler) Banner(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "AnkiConnect v.%d", models.APIVersion) //nolint:errcheck // best effort
}

// HealthLive returns 200 while the process is up, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady returns 200 when the note store answers a ping and 503
// otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.catalog != nil && h.catalog.Ping(r.Context()) == nil

	status := models.HealthStatus{
		Status:            "healthy",
		Version:           models.APIVersion,
		DatabaseConnected: dbConnected,
		Uptime:            time.Since(h.startTime).Seconds(),
		Timestamp:         time.Now().UTC(),
	}
	if h.clients != nil {
		status.WebSocketClients = h.clients.GetClientCount()
	}
	if h.circuit != nil {
		status.FetchCircuit = h.circuit.State()
	}

	code := http.StatusOK
	if !dbConnected {
		status.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, status)
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}
