// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package client

import (
	"context"
	"encoding/base64"

	"github.com/tomtom215/ankibridge/internal/models"
)

// Version returns the server's protocol version.
func (c *Client) Version(ctx context.Context) (int, error) {
	var v int
	err := c.Invoke(ctx, "version", nil, &v)
	return v, err
}

// RequestPermission asks whether this client's origin may use the API.
func (c *Client) RequestPermission(ctx context.Context) (models.PermissionResult, error) {
	var res models.PermissionResult
	err := c.Invoke(ctx, "requestPermission", nil, &res)
	return res, err
}

func (c *Client) DeckNames(ctx context.Context) ([]string, error) {
	var names []string
	err := c.Invoke(ctx, "deckNames", nil, &names)
	return names, err
}

func (c *Client) CreateDeck(ctx context.Context, deck string) (int64, error) {
	var id int64
	err := c.Invoke(ctx, "createDeck", map[string]string{"deck": deck}, &id)
	return id, err
}

func (c *Client) ModelNames(ctx context.Context) ([]string, error) {
	var names []string
	err := c.Invoke(ctx, "modelNames", nil, &names)
	return names, err
}

func (c *Client) ModelFieldNames(ctx context.Context, model string) ([]string, error) {
	var names []string
	err := c.Invoke(ctx, "modelFieldNames", map[string]string{"modelName": model}, &names)
	return names, err
}

// FindNotes returns the ids of notes matching query.
func (c *Client) FindNotes(ctx context.Context, query string) ([]int64, error) {
	var ids []int64
	err := c.Invoke(ctx, "findNotes", map[string]string{"query": query}, &ids)
	return ids, err
}

// NotesInfo returns one entry per id. Unknown ids come back zero-valued.
func (c *Client) NotesInfo(ctx context.Context, ids []int64) ([]models.NoteInfo, error) {
	var infos []models.NoteInfo
	err := c.Invoke(ctx, "notesInfo", map[string][]int64{"notes": ids}, &infos)
	return infos, err
}

// AddNote inserts a note and returns its id.
func (c *Client) AddNote(ctx context.Context, note models.NoteSpec) (int64, error) {
	var id int64
	err := c.Invoke(ctx, "addNote", map[string]models.NoteSpec{"note": note}, &id)
	return id, err
}

// CanAddNotes reports, per note, whether it could be added without
// creating a duplicate.
func (c *Client) CanAddNotes(ctx context.Context, notes []models.NoteSpec) ([]bool, error) {
	var res []bool
	err := c.Invoke(ctx, "canAddNotes", map[string][]models.NoteSpec{"notes": notes}, &res)
	return res, err
}

func (c *Client) UpdateNoteFields(ctx context.Context, note models.UpdateNoteSpec) error {
	return c.Invoke(ctx, "updateNoteFields", map[string]models.UpdateNoteSpec{"note": note}, nil)
}

// StoreMediaFile uploads data, or asks the server to fetch url when data is
// empty, and returns the name the server stored it under.
func (c *Client) StoreMediaFile(ctx context.Context, filename string, data []byte, url string) (string, error) {
	params := map[string]string{"filename": filename}
	if len(data) > 0 {
		params["data"] = base64.StdEncoding.EncodeToString(data)
	} else if url != "" {
		params["url"] = url
	}
	var stored string
	err := c.Invoke(ctx, "storeMediaFile", params, &stored)
	return stored, err
}

// RetrieveMediaFile downloads a stored file. found is false when the server
// has no file by that name.
func (c *Client) RetrieveMediaFile(ctx context.Context, filename string) (data []byte, found bool, err error) {
	var raw interface{}
	if err := c.Invoke(ctx, "retrieveMediaFile", map[string]string{"filename": filename}, &raw); err != nil {
		return nil, false, err
	}
	encoded, ok := raw.(string)
	if !ok {
		return nil, false, nil
	}
	data, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *Client) MediaFileNames(ctx context.Context, pattern string) ([]string, error) {
	var names []string
	err := c.Invoke(ctx, "getMediaFilesNames", map[string]string{"pattern": pattern}, &names)
	return names, err
}

func (c *Client) DeleteMediaFile(ctx context.Context, filename string) error {
	return c.Invoke(ctx, "deleteMediaFile", map[string]string{"filename": filename}, nil)
}

// GuiBrowse opens the card browser with query.
func (c *Client) GuiBrowse(ctx context.Context, query string) error {
	return c.Invoke(ctx, "guiBrowse", map[string]string{"query": query}, nil)
}
