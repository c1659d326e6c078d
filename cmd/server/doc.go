// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

/*
Package main is the ankibridge server.

It speaks the AnkiConnect protocol on 127.0.0.1:8765 so that browser
extensions and dictionary tools written for AnkiConnect can add and update
notes without a running Anki desktop.

Component initialization order:

 1. Configuration: koanf (defaults, config.yaml, environment)
 2. Logging: zerolog
 3. Note store: DuckDB
 4. Media: afero OS filesystem, badger content index, rate limited fetcher
 5. WebSocket hub: note and browse notifications
 6. Notes core, browse sinks, permission gate
 7. Supervisor tree: storage maintenance, hub, HTTP server

Shutdown on SIGINT/SIGTERM cancels the tree, which drains the HTTP server,
closes websocket clients and finally checkpoints and closes the stores.

Common environment variables:

	HTTP_HOST, HTTP_PORT       listen address (default 127.0.0.1:8765)
	DUCKDB_PATH                note store file
	MEDIA_DIR                  media folder
	MEDIA_INDEX_PATH           badger index directory, empty for in-memory
	API_KEY / API_KEY_HASH     require a key in every envelope
	CORS_ORIGINS               comma separated allowed browser origins
	BROWSE_COMMAND             opener for guiBrowse, e.g. xdg-open
	LOG_LEVEL, LOG_FORMAT      zerolog settings
*/
package main
