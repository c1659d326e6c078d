// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package api

import (
	"context"
	"sort"
)

type deckParams struct {
	Deck string `json:"deck" validate:"required,max=512"`
}

type modelNameParams struct {
	ModelName string `json:"modelName" validate:"required,max=512"`
}

type createModelParams struct {
	ModelName     string   `json:"modelName" validate:"required,max=512"`
	InOrderFields []string `json:"inOrderFields" validate:"required,min=1,max=64,dive,required,max=256"`
}

// modelField mirrors the "flds" entries of an Anki model dict.
type modelField struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
}

type modelResult struct {
	ID     int64        `json:"id"`
	Name   string       `json:"name"`
	Fields []modelField `json:"flds"`
}

func (h *Handler) deckNames(ctx context.Context, _ *call) (interface{}, error) {
	decks, err := h.catalog.DeckNamesAndIDs(ctx)
	if err != nil {
		return nil, err
	}
	return sortedKeys(decks), nil
}

func (h *Handler) deckNamesAndIDs(ctx context.Context, _ *call) (interface{}, error) {
	return h.catalog.DeckNamesAndIDs(ctx)
}

func (h *Handler) createDeck(ctx context.Context, c *call) (interface{}, error) {
	var p deckParams
	if err := decodeParams(c.params, &p); err != nil {
		return nil, err
	}
	return h.catalog.CreateDeck(ctx, p.Deck)
}

func (h *Handler) modelNames(ctx context.Context, _ *call) (interface{}, error) {
	types, err := h.catalog.ModelNamesAndIDs(ctx)
	if err != nil {
		return nil, err
	}
	return sortedKeys(types), nil
}

func (h *Handler) modelNamesAndIDs(ctx context.Context, _ *call) (interface{}, error) {
	return h.catalog.ModelNamesAndIDs(ctx)
}

func (h *Handler) modelFieldNames(ctx context.Context, c *call) (interface{}, error) {
	var p modelNameParams
	if err := decodeParams(c.params, &p); err != nil {
		return nil, err
	}
	return h.catalog.ModelFieldNamesByName(ctx, p.ModelName)
}

func (h *Handler) createModel(ctx context.Context, c *call) (interface{}, error) {
	var p createModelParams
	if err := decodeParams(c.params, &p); err != nil {
		return nil, err
	}
	id, err := h.catalog.EnsureModel(ctx, p.ModelName, p.InOrderFields)
	if err != nil {
		return nil, err
	}
	result := modelResult{ID: id, Name: p.ModelName, Fields: make([]modelField, len(p.InOrderFields))}
	for i, name := range p.InOrderFields {
		result.Fields[i] = modelField{Name: name, Ord: i}
	}
	return result, nil
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
