// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package api

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ankibridge/internal/models"
	"github.com/tomtom215/ankibridge/internal/validation"
)

const actionRequestPermission = "requestPermission"

// call carries what an action needs from its envelope.
type call struct {
	params json.RawMessage
	origin string
	depth  int
}

type actionFunc func(ctx context.Context, c *call) (interface{}, error)

func (h *Handler) actionTable() map[string]actionFunc {
	return map[string]actionFunc{
		"version": func(context.Context, *call) (interface{}, error) {
			return models.APIVersion, nil
		},

		// Decks and note types.
		"deckNames":        h.deckNames,
		"deckNamesAndIds":  h.deckNamesAndIDs,
		"createDeck":       h.createDeck,
		"modelNames":       h.modelNames,
		"modelNamesAndIds": h.modelNamesAndIDs,
		"modelFieldNames":  h.modelFieldNames,
		"createModel":      h.createModel,

		// Notes.
		"findNotes":        h.findNotes,
		"notesInfo":        h.notesInfo,
		"canAddNotes":      h.canAddNotes,
		"addNote":          h.addNote,
		"addNotes":         h.addNotes,
		"updateNoteFields": h.updateNoteFields,

		// Media.
		"storeMediaFile":     h.storeMediaFile,
		"retrieveMediaFile":  h.retrieveMediaFile,
		"getMediaFilesNames": h.getMediaFilesNames,
		"deleteMediaFile":    h.deleteMediaFile,

		"guiBrowse": h.guiBrowse,
		"multi":     h.multi,
	}
}

// decodeParams unmarshals raw into dst and validates it. Missing params
// decode as the zero value so that validation reports required fields.
func decodeParams(raw json.RawMessage, dst interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, dst); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
	}
	if err := validation.ValidateStruct(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}
