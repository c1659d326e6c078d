// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

/*
Package websocket pushes note events to connected clients.

Clients connect to /ws and receive JSON messages of the form

	{"type": "note_added", "data": {...}}

Message types:

  - note_added, note_add_failed, note_updated: the user-visible
    notifications of the note core (models.Notification as data)
  - gui_browse: a browse request, data {"query": ..., "url": ...}
  - pong: reply to a client {"type": "ping"}

The Hub is the notes.Notifier for desktop-style clients that have no
other notification channel. Broadcasts never block the request path: when
the hub buffer is full the message is dropped and counted.

The hub runs under the supervisor tree via RunWithContext. Cancelling the
context closes every client.
*/
package websocket
