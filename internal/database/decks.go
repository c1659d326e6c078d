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
)

// ErrInvalidName rejects blank deck and note type names.
var ErrInvalidName = errors.New("name must not be blank")

// ResolveDeckID returns the id of the named deck, creating it if needed.
func (db *DB) ResolveDeckID(ctx context.Context, name string) (id int64, err error) {
	defer observe("resolve_deck", time.Now(), &err)

	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrInvalidName
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	id, err = db.deckID(ctx, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	id = db.nextID()
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO decks (id, name) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`, id, name)
	if err != nil {
		return 0, fmt.Errorf("failed to create deck %q: %w", name, err)
	}
	// Re-read so a concurrent creator's id wins.
	return db.deckID(ctx, name)
}

// CreateDeck is ResolveDeckID under the AnkiConnect action name.
func (db *DB) CreateDeck(ctx context.Context, name string) (int64, error) {
	return db.ResolveDeckID(ctx, name)
}

func (db *DB) deckID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := db.conn.QueryRowContext(ctx, `SELECT id FROM decks WHERE name = ?`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to look up deck %q: %w", name, err)
	}
	return id, nil
}

// DeckNamesAndIDs lists every deck.
func (db *DB) DeckNamesAndIDs(ctx context.Context) (result map[string]int64, err error) {
	defer observe("deck_names", time.Now(), &err)

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT name, id FROM decks ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer closeQuietly(rows)

	result = make(map[string]int64)
	for rows.Next() {
		var name string
		var id int64
		if err = rows.Scan(&name, &id); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		result[name] = id
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decks: %w", err)
	}
	return result, nil
}
