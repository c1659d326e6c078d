// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package models

import "time"

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status            string    `json:"status"`
	Version           int       `json:"version"`
	DatabaseConnected bool      `json:"database_connected"`
	FetchCircuit      string    `json:"fetch_circuit,omitempty"`
	WebSocketClients  int       `json:"websocket_clients"`
	Uptime            float64   `json:"uptime"`
	Timestamp         time.Time `json:"timestamp"`
}
