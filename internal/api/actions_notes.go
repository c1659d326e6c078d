// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package api

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/ankibridge/internal/logging"
	"github.com/tomtom215/ankibridge/internal/models"
	"github.com/tomtom215/ankibridge/internal/notes"
	"github.com/tomtom215/ankibridge/internal/validation"
)

type findNotesParams struct {
	Query string `json:"query" validate:"max=4096"`
}

type notesInfoParams struct {
	Notes []int64 `json:"notes" validate:"required,max=10000,dive,gt=0"`
}

type noteParams struct {
	Note models.NoteSpec `json:"note" validate:"required"`
}

// noteBatchParams leaves the elements unvalidated so that one bad note
// only fails its own slot.
type noteBatchParams struct {
	Notes []models.NoteSpec `json:"notes" validate:"required,max=10000"`
}

type updateNoteParams struct {
	Note models.UpdateNoteSpec `json:"note" validate:"required"`
}

func (h *Handler) findNotes(ctx context.Context, c *call) (interface{}, error) {
	var p findNotesParams
	if err := decodeParams(c.params, &p); err != nil {
		return nil, err
	}
	ids, err := h.catalog.FindNotes(ctx, p.Query)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// notesInfo answers in request order with an empty object for every id
// that does not exist, as AnkiConnect does.
func (h *Handler) notesInfo(ctx context.Context, c *call) (interface{}, error) {
	var p notesInfoParams
	if err := decodeParams(c.params, &p); err != nil {
		return nil, err
	}
	infos, err := h.catalog.NotesInfo(ctx, p.Notes)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.NoteInfo, len(infos))
	for i := range infos {
		byID[infos[i].NoteID] = infos[i]
	}
	out := make([]interface{}, len(p.Notes))
	for i, id := range p.Notes {
		if info, ok := byID[id]; ok {
			out[i] = info
		} else {
			out[i] = struct{}{}
		}
	}
	return out, nil
}

func (h *Handler) canAddNotes(ctx context.Context, c *call) (interface{}, error) {
	var p noteBatchParams
	if err := decodeParams(c.params, &p); err != nil {
		return nil, err
	}
	candidates, empty, err := h.candidates(ctx, p.Notes)
	if err != nil {
		return nil, err
	}
	canAdd, err := h.notes.CheckExistence(ctx, candidates)
	if err != nil {
		return nil, err
	}
	// addNote rejects a blank first field, so canAddNotes must too.
	for i := range canAdd {
		if empty[i] {
			canAdd[i] = false
		}
	}
	return canAdd, nil
}

// candidates turns note payloads into existence candidates. The candidate
// field is the first schema field of the note type that the payload
// carries. For unknown note types it is the lexicographically first
// payload field; the check fails closed for those anyway. empty marks
// notes of a known type whose first schema field is blank.
func (h *Handler) candidates(ctx context.Context, specs []models.NoteSpec) (out []models.NoteCandidate, empty []bool, err error) {
	schemas := make(map[string][]string)
	out = make([]models.NoteCandidate, len(specs))
	empty = make([]bool, len(specs))
	for i := range specs {
		spec := &specs[i]
		schema, seen := schemas[spec.ModelName]
		if !seen {
			names, err := h.catalog.ModelFieldNamesByName(ctx, spec.ModelName)
			switch {
			case err == nil:
				schema = names
			case errors.Is(err, notes.ErrModelNotFound):
				schema = nil
			default:
				return nil, nil, err
			}
			schemas[spec.ModelName] = schema
		}

		field := candidateField(schema, spec.Fields)
		out[i] = models.NoteCandidate{
			ModelName:  spec.ModelName,
			FieldName:  field,
			FieldValue: spec.Fields[field],
		}
		empty[i] = len(schema) > 0 && strings.TrimSpace(spec.Fields[schema[0]]) == ""
	}
	return out, empty, nil
}

func candidateField(schema []string, fields map[string]string) string {
	for _, name := range schema {
		if _, ok := fields[name]; ok {
			return name
		}
	}
	if len(schema) > 0 {
		return schema[0]
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

func (h *Handler) addNote(ctx context.Context, c *call) (interface{}, error) {
	var p noteParams
	if err := decodeParams(c.params, &p); err != nil {
		return nil, err
	}
	note, err := p.Note.NewNote()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return h.notes.AddNote(ctx, note)
}

// addNotes returns one id per payload, or null where that note failed.
func (h *Handler) addNotes(ctx context.Context, c *call) (interface{}, error) {
	var p noteBatchParams
	if err := decodeParams(c.params, &p); err != nil {
		return nil, err
	}

	results := make([]*int64, len(p.Notes))
	batch := make([]models.NewNote, 0, len(p.Notes))
	slots := make([]int, 0, len(p.Notes))
	for i := range p.Notes {
		if err := validation.ValidateStruct(&p.Notes[i]); err != nil {
			logging.Ctx(ctx).Debug().Err(err).Int("index", i).Msg("skipping invalid note")
			continue
		}
		note, err := p.Notes[i].NewNote()
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).Int("index", i).Msg("skipping invalid note")
			continue
		}
		batch = append(batch, note)
		slots = append(slots, i)
	}

	for j, res := range h.notes.AddNotes(ctx, batch) {
		if res.Err != nil {
			continue
		}
		id := res.ID
		results[slots[j]] = &id
	}
	return results, nil
}

func (h *Handler) updateNoteFields(ctx context.Context, c *call) (interface{}, error) {
	var p updateNoteParams
	if err := decodeParams(c.params, &p); err != nil {
		return nil, err
	}
	attachments, err := models.Attachments(p.Note.Audio, p.Note.Video, p.Note.Picture)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if err := h.notes.UpdateNote(ctx, p.Note.ID, models.FieldMap(p.Note.Fields), attachments); err != nil {
		return nil, err
	}
	return nil, nil
}
