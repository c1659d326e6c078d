// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package api

import (
	"context"

	"github.com/tomtom215/ankibridge/internal/models"
)

type guiBrowseParams struct {
	Query string `json:"query" validate:"max=4096"`
}

type multiParams struct {
	Actions []models.ActionRequest `json:"actions" validate:"required,max=1000"`
}

// guiBrowse hands the query to the browse sinks and answers with an empty
// id list. Sink failures are logged by the browser and not reported.
func (h *Handler) guiBrowse(ctx context.Context, c *call) (interface{}, error) {
	var p guiBrowseParams
	if err := decodeParams(c.params, &p); err != nil {
		return nil, err
	}
	if h.browser != nil {
		_ = h.browser.Browse(ctx, p.Query) //nolint:errcheck // logged by the browser
	}
	return []int64{}, nil
}

// multi runs each sub-action in order and reports each outcome in the
// result/error envelope regardless of the sub-action's version.
func (h *Handler) multi(ctx context.Context, c *call) (interface{}, error) {
	if c.depth > 0 {
		return nil, ErrNestedMulti
	}
	var p multiParams
	if err := decodeParams(c.params, &p); err != nil {
		return nil, err
	}

	out := make([]models.ActionResponse, len(p.Actions))
	for i := range p.Actions {
		result, err := h.execute(ctx, &p.Actions[i], c.origin, c.depth+1)
		if err != nil {
			msg := err.Error()
			out[i] = models.ActionResponse{Error: &msg}
			continue
		}
		out[i] = models.ActionResponse{Result: result}
	}
	return out, nil
}
