// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/ankibridge/internal/notes"
)

// ErrNoteTypeConflict means EnsureModel found an existing note type with a
// different field list.
var ErrNoteTypeConflict = errors.New("note type already exists with different fields")

// ResolveModelID returns the id of the named note type. minFields > 0
// additionally requires the type to have at least that many fields.
func (db *DB) ResolveModelID(ctx context.Context, name string, minFields int) (int64, error) {
	nt, err := db.noteTypeByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if minFields > 0 && len(nt.fields) < minFields {
		return 0, fmt.Errorf("%w: %q has %d fields, %d given", notes.ErrModelNotFound, name, len(nt.fields), minFields)
	}
	return nt.id, nil
}

// ModelFieldNames returns the ordered field names of a note type.
func (db *DB) ModelFieldNames(ctx context.Context, modelID int64) (names []string, err error) {
	defer observe("model_fields", time.Now(), &err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	names, err = db.fieldNames(ctx, modelID)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: id %d", notes.ErrModelNotFound, modelID)
	}
	return names, nil
}

// ModelFieldNamesByName returns the ordered field names of the named type.
func (db *DB) ModelFieldNamesByName(ctx context.Context, name string) ([]string, error) {
	nt, err := db.noteTypeByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), nt.fields...), nil
}

// ModelNamesAndIDs lists every note type.
func (db *DB) ModelNamesAndIDs(ctx context.Context) (result map[string]int64, err error) {
	defer observe("model_names", time.Now(), &err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT name, id FROM note_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list note types: %w", err)
	}
	defer closeQuietly(rows)

	result = make(map[string]int64)
	for rows.Next() {
		var name string
		var id int64
		if err = rows.Scan(&name, &id); err != nil {
			return nil, fmt.Errorf("failed to scan note type: %w", err)
		}
		result[name] = id
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating note types: %w", err)
	}
	return result, nil
}

// EnsureModel creates a note type with the given fields, or returns the id
// of an existing one with the same name and identical fields.
func (db *DB) EnsureModel(ctx context.Context, name string, fields []string) (id int64, err error) {
	defer observe("ensure_model", time.Now(), &err)

	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrInvalidName
	}
	if len(fields) == 0 {
		return 0, fmt.Errorf("note type %q needs at least one field", name)
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		key := strings.ToLower(strings.TrimSpace(f))
		if key == "" {
			return 0, fmt.Errorf("note type %q has a blank field name", name)
		}
		if seen[key] {
			return 0, fmt.Errorf("note type %q has duplicate field %q", name, f)
		}
		seen[key] = true
	}

	if existing, lookupErr := db.noteTypeByName(ctx, name); lookupErr == nil {
		if !sameFields(existing.fields, fields) {
			return 0, fmt.Errorf("%w: %q", ErrNoteTypeConflict, name)
		}
		return existing.id, nil
	} else if !errors.Is(lookupErr, notes.ErrModelNotFound) {
		return 0, lookupErr
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	id = db.nextID()
	if _, err = tx.ExecContext(ctx, `INSERT INTO note_types (id, name) VALUES (?, ?)`, id, name); err != nil {
		return 0, fmt.Errorf("failed to create note type %q: %w", name, err)
	}
	for ord, field := range fields {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO note_type_fields (note_type_id, ord, name) VALUES (?, ?, ?)`,
			id, ord, strings.TrimSpace(field)); err != nil {
			return 0, fmt.Errorf("failed to add field %q to %q: %w", field, name, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit note type %q: %w", name, err)
	}

	db.modelCache.Remove(name)
	return id, nil
}

func (db *DB) noteTypeByName(ctx context.Context, name string) (nt noteType, err error) {
	if cached, ok := db.modelCache.Get(name); ok {
		return cached, nil
	}
	defer observe("resolve_model", time.Now(), &err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	err = db.conn.QueryRowContext(ctx, `SELECT id FROM note_types WHERE name = ?`, name).Scan(&nt.id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return noteType{}, fmt.Errorf("%w: %q", notes.ErrModelNotFound, name)
		}
		return noteType{}, fmt.Errorf("failed to look up note type %q: %w", name, err)
	}
	if nt.fields, err = db.fieldNames(ctx, nt.id); err != nil {
		return noteType{}, err
	}

	db.modelCache.Add(name, nt)
	return nt, nil
}

func (db *DB) fieldNames(ctx context.Context, modelID int64) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT name FROM note_type_fields WHERE note_type_id = ? ORDER BY ord`, modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fields of note type %d: %w", modelID, err)
	}
	defer closeQuietly(rows)

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan field name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating field names: %w", err)
	}
	return names, nil
}

// allFieldNames maps every note type id to its ordered field names.
func (db *DB) allFieldNames(ctx context.Context) (map[int64][]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT note_type_id, name FROM note_type_fields ORDER BY note_type_id, ord`)
	if err != nil {
		return nil, fmt.Errorf("failed to query note type fields: %w", err)
	}
	defer closeQuietly(rows)

	result := make(map[int64][]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan note type field: %w", err)
		}
		result[id] = append(result[id], name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating note type fields: %w", err)
	}
	return result, nil
}

func sameFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != strings.TrimSpace(b[i]) {
			return false
		}
	}
	return true
}
