// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

/*
Package api serves the AnkiConnect protocol over HTTP.

Every action is a POST to "/" carrying a JSON envelope:

	{"action": "canAddNotes", "version": 6, "params": {"notes": [...]}, "key": "..."}

Requests with version 5 or later receive {"result": ..., "error": ...}.
Older versions (and requests without a version, which AnkiConnect treats
as version 4) receive the bare result on success. Failures are always
reported in the envelope form with HTTP status 200, because AnkiConnect
clients only inspect the body.

Routes:

	GET  /              plain text banner, used by clients to probe the server
	POST /              action dispatch
	GET  /ws            websocket feed of note and browse events
	GET  /health/live   liveness
	GET  /health/ready  readiness (database ping)
	GET  /metrics       Prometheus metrics

The action table lives in actions.go. Each action decodes its params into a
typed struct, validates it with the shared validator, and delegates to the
notes core, the catalog (decks, note types, search) or the media store.
*/
package api
