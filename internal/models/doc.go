// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

/*
Package models defines the data structures shared by the note core, the note
store and the HTTP layer.

Domain types:

  - NoteCandidate: one (note type, field, value) triple checked for duplicates
  - MediaAttachment: audio, video or picture bytes or URL destined for fields
  - FieldMap: field name to field value
  - NewNote: everything needed to insert one note
  - NoteInfo: read-side view returned by notesInfo

Wire types (AnkiConnect envelope and action params) live in ankiconnect.go.
They use the camelCase JSON names AnkiConnect clients send.
*/
package models
