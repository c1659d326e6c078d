// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

/*
Package services adapts ankibridge components to suture.Service.

  - HTTPServerService: *http.Server with graceful shutdown
  - WebSocketHubService: websocket.Hub.RunWithContext
  - PeriodicService: runs a maintenance task on a ticker (DuckDB
    checkpoints, media index value log GC)

Each wrapper implements fmt.Stringer so supervisor events name it.
*/
package services
