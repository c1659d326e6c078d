// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package notes

import (
	"context"
	"errors"

	"github.com/tomtom215/ankibridge/internal/models"
)

var (
	// ErrModelNotFound is returned by NoteStore.ResolveModelID.
	ErrModelNotFound = errors.New("model was not found")

	// ErrNoteNotFound is returned by NoteStore lookups by note id.
	ErrNoteNotFound = errors.New("note was not found")

	// ErrMediaSourceMissing aborts a merge when an attachment has neither
	// bytes nor a URL. The text is what AnkiConnect clients already show.
	//
	//nolint:staticcheck // message is surfaced verbatim to AnkiConnect clients
	ErrMediaSourceMissing = errors.New(`You must provide a "data" or "url" field. Note that "path" is not supported`)

	// ErrInsertFailed wraps every insert failure.
	ErrInsertFailed = errors.New("couldn't add note")

	// ErrDuplicateNote rejects an insert whose first field already exists.
	ErrDuplicateNote = errors.New("cannot create note because it is a duplicate")

	// ErrEmptyNote rejects an insert whose first field is blank.
	ErrEmptyNote = errors.New("cannot create note because it is empty")

	// ErrFieldCountMismatch means the store returned schema names and values
	// of different lengths for one note.
	ErrFieldCountMismatch = errors.New("note field count does not match its note type")

	// ErrFetchDisabled is returned for URL attachments when no Fetcher is wired.
	ErrFetchDisabled = errors.New("remote media fetching is disabled")
)

// NoteStore is the note database the core runs against.
type NoteStore interface {
	// ResolveModelID returns the id of the note type called name that has at
	// least minFields fields (0 = any), or ErrModelNotFound.
	ResolveModelID(ctx context.Context, name string, minFields int) (int64, error)

	// QueryExists reports whether any note has fieldName equal to fieldValue.
	// Matching follows the store's search dialect: the store escapes what it
	// knows how to escape and nothing more. Callers needing exact matches on
	// arbitrary text should prefer BatchDuplicateFinder.
	QueryExists(ctx context.Context, fieldName, fieldValue string) (bool, error)

	// ResolveDeckID returns the id of the named deck, creating it if needed.
	ResolveDeckID(ctx context.Context, name string) (int64, error)

	ModelFieldNames(ctx context.Context, modelID int64) ([]string, error)
	NoteSchemaFieldNames(ctx context.Context, noteID int64) ([]string, error)
	NoteFieldValues(ctx context.Context, noteID int64) ([]string, error)

	// ReplaceNoteFields overwrites every field of the note, in schema order.
	ReplaceNoteFields(ctx context.Context, noteID int64, values []string) error

	// InsertNote stores a note and returns its id.
	InsertNote(ctx context.Context, modelID, deckID int64, values, tags []string) (int64, error)
}

// BatchDuplicateFinder is the optional batched duplicate lookup. The
// returned map holds the indexes of values that already exist as the first
// field of a note of modelID.
type BatchDuplicateFinder interface {
	FindDuplicates(ctx context.Context, modelID int64, firstFieldValues []string) (map[int]bool, error)
}

// MediaStore persists media bytes and returns the filename actually used,
// which may differ from the requested one.
type MediaStore interface {
	StoreMediaFile(ctx context.Context, filename string, data []byte) (string, error)
}

// Fetcher downloads remote media.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Notifier receives user-visible note events. Implementations must not
// block the caller.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n models.Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n models.Notification) { f(ctx, n) }

// MultiNotifier fans a notification out to every sink in order.
type MultiNotifier []Notifier

// Notify implements Notifier.
func (m MultiNotifier) Notify(ctx context.Context, n models.Notification) {
	for _, sink := range m {
		if sink != nil {
			sink.Notify(ctx, n)
		}
	}
}
