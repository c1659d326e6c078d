// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

/*
Package supervisor runs the long-lived services of ankibridge under a
suture v4 supervisor tree.

The tree has three layers so that a crash in one does not take the others
down:

	RootSupervisor ("ankibridge")
	├── StorageSupervisor ("storage-layer")
	│   ├── duckdb-checkpoint   periodic CHECKPOINT of the note store
	│   └── media-index-gc      periodic badger value log GC
	├── MessagingSupervisor ("messaging-layer")
	│   └── websocket-hub
	└── APISupervisor ("api-layer")
	    └── http-server

Supervisor events (service failures, restarts, backoff) are logged through
sutureslog, which feeds the zerolog logger via logging.NewSlogLogger.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{})
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh
*/
package supervisor
