// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package notes

import (
	"context"
	"fmt"

	"github.com/tomtom215/ankibridge/internal/logging"
	"github.com/tomtom215/ankibridge/internal/metrics"
	"github.com/tomtom215/ankibridge/internal/models"
)

// UpdateNote overwrites the fields named in newFields, keeps the stored
// value of every other field, merges attachments and writes all fields back
// in one replace. Names in newFields that are not part of the note type are
// ignored.
func (s *Service) UpdateNote(ctx context.Context, noteID int64, newFields models.FieldMap, attachments []models.MediaAttachment) error {
	if err := validateAttachments(attachments); err != nil {
		return err
	}

	names, err := s.store.NoteSchemaFieldNames(ctx, noteID)
	if err != nil {
		return fmt.Errorf("failed to load field names of note %d: %w", noteID, err)
	}
	values, err := s.store.NoteFieldValues(ctx, noteID)
	if err != nil {
		return fmt.Errorf("failed to load fields of note %d: %w", noteID, err)
	}
	if len(names) != len(values) {
		return fmt.Errorf("note %d: %w (%d names, %d values)", noteID, ErrFieldCountMismatch, len(names), len(values))
	}

	merged := make(models.FieldMap, len(names))
	for i, name := range names {
		if v, ok := newFields[name]; ok {
			merged[name] = v
		} else {
			merged[name] = values[i]
		}
	}

	if _, err := s.MergeMedia(ctx, merged, attachments); err != nil {
		return err
	}

	err = s.store.ReplaceNoteFields(ctx, noteID, ordered(names, merged))
	metrics.RecordNoteWrite("update", err)
	if err != nil {
		return fmt.Errorf("failed to update note %d: %w", noteID, err)
	}

	logging.Ctx(ctx).Info().Int64("note_id", noteID).Int("media", len(attachments)).Msg("note fields updated")
	s.notify(ctx, models.NotificationNoteUpdated, "Card updated", noteID)
	return nil
}

func ordered(names []string, fields models.FieldMap) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = fields[name]
	}
	return out
}
