// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

/*
schema.go - Note Store Schema

Four tables hold the collection:

  - decks: id, unique name
  - note_types: id, unique name
  - note_type_fields: ordered field names per note type
  - notes: field values joined by the 0x1f unit separator, the normalized
    duplicate key of the first field, and space-padded tags

Foreign keys are deliberately absent: DuckDB rewrites updated rows as
delete+insert, which trips FK checks on the referenced side.
*/

package database

import (
	"context"
	"fmt"
	"time"
)

// DefaultDeckName is the deck notes land in when none is given.
const DefaultDeckName = "Default"

// BasicNoteType is the seeded two-field note type.
var BasicNoteType = struct {
	Name   string
	Fields []string
}{Name: "Basic", Fields: []string{"Front", "Back"}}

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}
	return nil
}

func getTableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS decks (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS note_types (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS note_type_fields (
			note_type_id BIGINT NOT NULL,
			ord INTEGER NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (note_type_id, ord)
		)`,
		`CREATE TABLE IF NOT EXISTS notes (
			id BIGINT PRIMARY KEY,
			note_type_id BIGINT NOT NULL,
			deck_id BIGINT NOT NULL,
			fields TEXT NOT NULL,
			first_field_key TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			modified_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_first_field ON notes (note_type_id, first_field_key)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_deck ON notes (deck_id)`,
	}
}

func (db *DB) seedDefaults(ctx context.Context) error {
	if _, err := db.ResolveDeckID(ctx, DefaultDeckName); err != nil {
		return fmt.Errorf("failed to seed default deck: %w", err)
	}
	if _, err := db.EnsureModel(ctx, BasicNoteType.Name, BasicNoteType.Fields); err != nil {
		return fmt.Errorf("failed to seed basic note type: %w", err)
	}
	return nil
}
