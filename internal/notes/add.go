// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package notes

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/ankibridge/internal/logging"
	"github.com/tomtom215/ankibridge/internal/metrics"
	"github.com/tomtom215/ankibridge/internal/models"
)

// Messages shown to the user for insert outcomes.
const (
	MessageNoteAdded     = "Card added"
	MessageNoteAddFailed = "Failed to add card"
)

// AddNote inserts a note and returns its id. Exactly one notification is
// published per call, for success or failure.
func (s *Service) AddNote(ctx context.Context, note models.NewNote) (id int64, err error) {
	defer func() {
		metrics.RecordNoteWrite("add", err)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("model", note.ModelName).Str("deck", note.DeckName).Msg("note not added")
			s.notify(ctx, models.NotificationNoteAddFailed, MessageNoteAddFailed, 0)
			return
		}
		logging.Ctx(ctx).Info().Int64("note_id", id).Str("deck", note.DeckName).Msg("note added")
		s.notify(ctx, models.NotificationNoteAdded, MessageNoteAdded, id)
	}()

	if err = validateAttachments(note.Media); err != nil {
		return 0, err
	}

	modelID, err := s.store.ResolveModelID(ctx, note.ModelName, len(note.Fields))
	if err != nil {
		return 0, fmt.Errorf("note type %q: %w", note.ModelName, err)
	}
	names, err := s.store.ModelFieldNames(ctx, modelID)
	if err != nil {
		return 0, fmt.Errorf("failed to load fields of note type %q: %w", note.ModelName, err)
	}
	if len(names) == 0 {
		return 0, fmt.Errorf("note type %q has no fields", note.ModelName)
	}

	first := note.Fields[names[0]]
	if strings.TrimSpace(first) == "" {
		return 0, ErrEmptyNote
	}
	if !note.AllowDuplicate {
		canAdd, checkErr := s.CheckExistence(ctx, []models.NoteCandidate{{
			ModelName:  note.ModelName,
			FieldName:  names[0],
			FieldValue: first,
		}})
		if checkErr != nil {
			return 0, checkErr
		}
		if !canAdd[0] {
			return 0, ErrDuplicateNote
		}
	}

	deckID, err := s.store.ResolveDeckID(ctx, note.DeckName)
	if err != nil {
		return 0, fmt.Errorf("deck %q: %w", note.DeckName, err)
	}

	fields := make(models.FieldMap, len(names))
	for _, name := range names {
		fields[name] = note.Fields[name]
	}
	if _, err = s.MergeMedia(ctx, fields, note.Media); err != nil {
		return 0, err
	}

	id, err = s.store.InsertNote(ctx, modelID, deckID, ordered(names, fields), note.Tags)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInsertFailed, err)
	}
	if id == 0 {
		return 0, ErrInsertFailed
	}
	return id, nil
}

// AddResult is the outcome of one note of an AddNotes batch.
type AddResult struct {
	ID  int64
	Err error
}

// AddNotes inserts each note independently; one failure does not stop the
// others.
func (s *Service) AddNotes(ctx context.Context, batch []models.NewNote) []AddResult {
	results := make([]AddResult, len(batch))
	for i := range batch {
		id, err := s.AddNote(ctx, batch[i])
		results[i] = AddResult{ID: id, Err: err}
	}
	return results
}
