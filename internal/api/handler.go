// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ankibridge/internal/auth"
	"github.com/tomtom215/ankibridge/internal/logging"
	"github.com/tomtom215/ankibridge/internal/metrics"
	"github.com/tomtom215/ankibridge/internal/models"
	"github.com/tomtom215/ankibridge/internal/notes"
	"github.com/tomtom215/ankibridge/internal/validation"
)

// Catalog is the read side of the collection plus deck and note type
// management. *database.DB implements it.
type Catalog interface {
	DeckNamesAndIDs(ctx context.Context) (map[string]int64, error)
	CreateDeck(ctx context.Context, name string) (int64, error)
	ModelNamesAndIDs(ctx context.Context) (map[string]int64, error)
	ModelFieldNamesByName(ctx context.Context, name string) ([]string, error)
	EnsureModel(ctx context.Context, name string, fields []string) (int64, error)
	FindNotes(ctx context.Context, query string) ([]int64, error)
	NotesInfo(ctx context.Context, ids []int64) ([]models.NoteInfo, error)
	Ping(ctx context.Context) error
}

// MediaFiles is the part of the media store the media actions need beyond
// what the notes core already uses. *media.Store implements it.
type MediaFiles interface {
	RetrieveMediaFile(ctx context.Context, filename string) ([]byte, error)
	MediaFileNames(ctx context.Context, pattern string) ([]string, error)
	DeleteMediaFile(ctx context.Context, filename string) error
}

// Browser opens the host browser for guiBrowse. *browse.Browser implements it.
type Browser interface {
	Browse(ctx context.Context, query string) error
}

// Handler dispatches AnkiConnect actions.
type Handler struct {
	notes     *notes.Service
	catalog   Catalog
	media     MediaFiles
	browser   Browser
	gate      *auth.Gate
	clients   StatusSource
	circuit   CircuitSource
	startTime time.Time
	actions   map[string]actionFunc
}

// NewHandler builds the action table. browser may be nil, in which case
// guiBrowse succeeds without side effects.
func NewHandler(svc *notes.Service, catalog Catalog, files MediaFiles, browser Browser, gate *auth.Gate) *Handler {
	h := &Handler{
		notes:     svc,
		catalog:   catalog,
		media:     files,
		browser:   browser,
		gate:      gate,
		startTime: time.Now(),
	}
	h.actions = h.actionTable()
	return h
}

// Actions handles POST / requests.
func (h *Handler) Actions(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondAction(r.Context(), w, models.APIVersion, nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err))
		return
	}

	var req models.ActionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondAction(r.Context(), w, models.APIVersion, nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err))
		return
	}

	result, err := h.execute(r.Context(), &req, r.Header.Get("Origin"), 0)
	respondAction(r.Context(), w, req.Version, result, err)
}

// Execute runs a single decoded request as if it arrived from origin.
func (h *Handler) Execute(ctx context.Context, req *models.ActionRequest, origin string) (interface{}, error) {
	return h.execute(ctx, req, origin, 0)
}

func (h *Handler) execute(ctx context.Context, req *models.ActionRequest, origin string, depth int) (result interface{}, err error) {
	start := time.Now()
	label := req.Action
	fn, known := h.actions[req.Action]
	if !known && req.Action != actionRequestPermission {
		label = "unsupported"
	}
	ctx = logging.ContextWithAction(ctx, label)

	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
			logging.Ctx(ctx).Debug().Err(err).Int("depth", depth).Msg("action failed")
		}
		metrics.RecordAction(label, outcome, time.Since(start))
	}()

	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, verr)
	}

	// requestPermission is how clients learn whether a key is needed, so it
	// is never gated on one.
	if req.Action == actionRequestPermission {
		return h.gate.RequestPermission(origin), nil
	}

	// Sub-actions of multi inherit the outer authorization.
	if depth == 0 {
		if err := h.gate.Authorize(origin, req.Key); err != nil {
			return nil, err
		}
	}

	if !known {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAction, req.Action)
	}
	return fn(ctx, &call{params: req.Params, origin: origin, depth: depth})
}

// respondAction writes an action reply. Successful replies to version 4
// and older are bare; everything else uses the result/error envelope.
func respondAction(ctx context.Context, w http.ResponseWriter, version int, result interface{}, err error) {
	var payload interface{}
	switch {
	case err != nil:
		msg := err.Error()
		payload = models.ActionResponse{Result: nil, Error: &msg}
	case effectiveVersion(version) <= 4:
		payload = result
	default:
		payload = models.ActionResponse{Result: result}
	}

	data, merr := json.Marshal(payload)
	if merr != nil {
		logging.Ctx(ctx).Error().Err(merr).Msg("failed to marshal action response")
		msg := "failed to encode result"
		data, _ = json.Marshal(models.ActionResponse{Error: &msg}) //nolint:errcheck // static shape
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, werr := w.Write(data); werr != nil && !errors.Is(werr, context.Canceled) {
		logging.Ctx(ctx).Debug().Err(werr).Msg("failed to write action response")
	}
}

// effectiveVersion applies AnkiConnect's default of 4 for a missing version.
func effectiveVersion(v int) int {
	if v == 0 {
		return 4
	}
	return v
}
