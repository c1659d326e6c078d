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
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/ankibridge/internal/models"
	"github.com/tomtom215/ankibridge/internal/notes"
)

const (
	// fieldSeparator joins field values in notes.fields.
	fieldSeparator = "\x1f"

	// duplicateChunkSize bounds the IN list of one duplicate lookup.
	duplicateChunkSize = 500
)

// InsertNote stores a note. values must be in schema order and match the
// note type's field count.
func (db *DB) InsertNote(ctx context.Context, modelID, deckID int64, values, tags []string) (id int64, err error) {
	defer observe("insert_note", time.Now(), &err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	names, err := db.fieldNames(ctx, modelID)
	if err != nil {
		return 0, err
	}
	if len(names) == 0 {
		return 0, fmt.Errorf("%w: id %d", notes.ErrModelNotFound, modelID)
	}
	if len(names) != len(values) {
		return 0, fmt.Errorf("%w: %d values for %d fields", notes.ErrFieldCountMismatch, len(values), len(names))
	}

	now := db.now().UTC()
	id = db.nextID()
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO notes (id, note_type_id, deck_id, fields, first_field_key, tags, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, modelID, deckID, joinFields(values), DuplicateKey(values[0]), joinTags(tags), now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert note: %w", err)
	}
	return id, nil
}

// NoteSchemaFieldNames returns the field names of the note's type.
func (db *DB) NoteSchemaFieldNames(ctx context.Context, noteID int64) (names []string, err error) {
	defer observe("note_schema", time.Now(), &err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var modelID int64
	err = db.conn.QueryRowContext(ctx, `SELECT note_type_id FROM notes WHERE id = ?`, noteID).Scan(&modelID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", notes.ErrNoteNotFound, noteID)
		}
		return nil, fmt.Errorf("failed to look up note %d: %w", noteID, err)
	}
	return db.fieldNames(ctx, modelID)
}

// NoteFieldValues returns the note's stored values in schema order.
func (db *DB) NoteFieldValues(ctx context.Context, noteID int64) (values []string, err error) {
	defer observe("note_values", time.Now(), &err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var joined string
	err = db.conn.QueryRowContext(ctx, `SELECT fields FROM notes WHERE id = ?`, noteID).Scan(&joined)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", notes.ErrNoteNotFound, noteID)
		}
		return nil, fmt.Errorf("failed to read note %d: %w", noteID, err)
	}
	return splitFields(joined), nil
}

// ReplaceNoteFields overwrites every field value of the note.
func (db *DB) ReplaceNoteFields(ctx context.Context, noteID int64, values []string) (err error) {
	defer observe("replace_note", time.Now(), &err)

	names, err := db.NoteSchemaFieldNames(ctx, noteID)
	if err != nil {
		return err
	}
	if len(names) != len(values) {
		return fmt.Errorf("%w: %d values for %d fields", notes.ErrFieldCountMismatch, len(values), len(names))
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE notes SET fields = ?, first_field_key = ?, modified_at = ? WHERE id = ?`,
		joinFields(values), DuplicateKey(values[0]), db.now().UTC(), noteID)
	if err != nil {
		return fmt.Errorf("failed to update note %d: %w", noteID, err)
	}
	if n, rowsErr := result.RowsAffected(); rowsErr == nil && n == 0 {
		return fmt.Errorf("%w: %d", notes.ErrNoteNotFound, noteID)
	}
	return nil
}

// FindDuplicates reports which values already exist as the first field of
// a note of modelID. Blank values never count as duplicates.
func (db *DB) FindDuplicates(ctx context.Context, modelID int64, values []string) (dups map[int]bool, err error) {
	defer observe("find_duplicates", time.Now(), &err)

	byKey := make(map[string][]int, len(values))
	keys := make([]string, 0, len(values))
	for i, v := range values {
		key := DuplicateKey(v)
		if key == "" {
			continue
		}
		if _, seen := byKey[key]; !seen {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], i)
	}

	dups = make(map[int]bool)
	if len(keys) == 0 {
		return dups, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	for start := 0; start < len(keys); start += duplicateChunkSize {
		end := min(start+duplicateChunkSize, len(keys))
		chunk := keys[start:end]

		args := make([]interface{}, 0, len(chunk)+1)
		args = append(args, modelID)
		for _, k := range chunk {
			args = append(args, k)
		}
		query := `SELECT DISTINCT first_field_key FROM notes WHERE note_type_id = ? AND first_field_key IN (` +
			placeholders(len(chunk)) + `)`

		if err = db.collectDuplicates(ctx, query, args, byKey, dups); err != nil {
			return nil, err
		}
	}
	return dups, nil
}

func (db *DB) collectDuplicates(ctx context.Context, query string, args []interface{}, byKey map[string][]int, dups map[int]bool) error {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query duplicates: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return fmt.Errorf("failed to scan duplicate key: %w", err)
		}
		for _, i := range byKey[key] {
			dups[i] = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating duplicates: %w", err)
	}
	return nil
}

// QueryExists runs a field-equals search and reports whether it matched.
func (db *DB) QueryExists(ctx context.Context, fieldName, fieldValue string) (bool, error) {
	ids, err := db.findNotes(ctx, FieldEqualsQuery(fieldName, fieldValue), 1)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

// FindNotes returns the ids of notes matching a search, ascending.
func (db *DB) FindNotes(ctx context.Context, query string) ([]int64, error) {
	return db.findNotes(ctx, query, 0)
}

func (db *DB) findNotes(ctx context.Context, query string, limit int) (ids []int64, err error) {
	defer observe("find_notes", time.Now(), &err)

	q, err := parseSearch(query)
	if err != nil {
		return nil, err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		where []string
		args  []interface{}
	)
	for _, needle := range q.needles() {
		where = append(where, `strpos(lower(n.fields), ?) > 0`)
		args = append(args, needle)
	}

	ids = []int64{}
	err = db.scanNotes(ctx, where, args, func(n *searchable, _ time.Time) bool {
		if q.matches(n) {
			ids = append(ids, n.id)
		}
		return limit <= 0 || len(ids) < limit
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// NotesInfo returns the stored notes for ids, in request order. Unknown ids
// are skipped.
func (db *DB) NotesInfo(ctx context.Context, ids []int64) (infos []models.NoteInfo, err error) {
	defer observe("notes_info", time.Now(), &err)

	infos = []models.NoteInfo{}
	if len(ids) == 0 {
		return infos, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	where := []string{`n.id IN (` + placeholders(len(ids)) + `)`}

	found := make(map[int64]models.NoteInfo, len(ids))
	err = db.scanNotes(ctx, where, args, func(n *searchable, modified time.Time) bool {
		info := models.NoteInfo{
			NoteID:    n.id,
			ModelName: n.noteType,
			DeckName:  n.deck,
			Tags:      append([]string{}, n.tags...),
			Fields:    make(map[string]models.NoteField, len(n.fieldNames)),
			Modified:  modified,
			Mod:       modified.Unix(),
		}
		for i, name := range n.fieldNames {
			value := ""
			if i < len(n.fields) {
				value = n.fields[i]
			}
			info.Fields[name] = models.NoteField{Value: value, Order: i}
		}
		found[n.id] = info
		return true
	})
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		if info, ok := found[id]; ok {
			infos = append(infos, info)
		}
	}
	return infos, nil
}

// scanNotes streams notes (ascending id) into fn until it returns false.
func (db *DB) scanNotes(ctx context.Context, where []string, args []interface{}, fn func(*searchable, time.Time) bool) error {
	fieldNames, err := db.allFieldNames(ctx)
	if err != nil {
		return err
	}

	query := `SELECT n.id, n.note_type_id, t.name, d.name, n.fields, n.tags, n.modified_at
		FROM notes n
		JOIN note_types t ON t.id = n.note_type_id
		JOIN decks d ON d.id = n.deck_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY n.id"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query notes: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var (
			n        searchable
			typeID   int64
			joined   string
			tags     string
			modified time.Time
		)
		if err := rows.Scan(&n.id, &typeID, &n.noteType, &n.deck, &joined, &tags, &modified); err != nil {
			return fmt.Errorf("failed to scan note: %w", err)
		}
		n.fieldNames = fieldNames[typeID]
		n.fields = splitFields(joined)
		n.tags = strings.Fields(tags)
		if !fn(&n, modified) {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating notes: %w", err)
	}
	return nil
}

func joinFields(values []string) string {
	clean := make([]string, len(values))
	for i, v := range values {
		clean[i] = strings.ReplaceAll(v, fieldSeparator, " ")
	}
	return strings.Join(clean, fieldSeparator)
}

func splitFields(joined string) []string {
	return strings.Split(joined, fieldSeparator)
}

// joinTags stores tags space-padded and deduplicated so " tag " substring
// matches are exact.
func joinTags(tags []string) string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, tag := range tags {
		for _, t := range strings.Fields(tag) {
			if !seen[strings.ToLower(t)] {
				seen[strings.ToLower(t)] = true
				out = append(out, t)
			}
		}
	}
	if len(out) == 0 {
		return ""
	}
	sort.Strings(out)
	return " " + strings.Join(out, " ") + " "
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
