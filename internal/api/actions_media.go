// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package api

import (
	"context"
	"crypto/md5" //nolint:gosec // skipHash is an MD5 digest on the wire
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/ankibridge/internal/logging"
	"github.com/tomtom215/ankibridge/internal/media"
	"github.com/tomtom215/ankibridge/internal/models"
)

type storeMediaParams struct {
	Filename string `json:"filename" validate:"required,max=255"`
	Data     string `json:"data,omitempty"`
	URL      string `json:"url,omitempty" validate:"omitempty,url"`
	SkipHash string `json:"skipHash,omitempty" validate:"omitempty,len=32,hexadecimal"`
}

type filenameParams struct {
	Filename string `json:"filename" validate:"required,max=255"`
}

type patternParams struct {
	Pattern string `json:"pattern" validate:"max=512"`
}

// storeMediaFile stores inline or fetched bytes and returns the name the
// store assigned. When skipHash matches the MD5 of inline data nothing is
// stored and the result is null.
func (h *Handler) storeMediaFile(ctx context.Context, c *call) (interface{}, error) {
	var p storeMediaParams
	if err := decodeParams(c.params, &p); err != nil {
		return nil, err
	}

	spec := models.MediaSpec{Filename: p.Filename, Data: p.Data, URL: p.URL}
	att, err := spec.Attachment(models.MediaPicture)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	if p.SkipHash != "" && len(att.Data) > 0 {
		sum := md5.Sum(att.Data) //nolint:gosec // see import
		if strings.EqualFold(hex.EncodeToString(sum[:]), p.SkipHash) {
			logging.Ctx(ctx).Debug().Str("filename", p.Filename).Msg("media skipped by hash")
			return nil, nil
		}
	}

	return h.notes.StoreMedia(ctx, att)
}

// retrieveMediaFile answers false for a missing file.
func (h *Handler) retrieveMediaFile(ctx context.Context, c *call) (interface{}, error) {
	var p filenameParams
	if err := decodeParams(c.params, &p); err != nil {
		return nil, err
	}
	data, err := h.media.RetrieveMediaFile(ctx, p.Filename)
	if errors.Is(err, media.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (h *Handler) getMediaFilesNames(ctx context.Context, c *call) (interface{}, error) {
	var p patternParams
	if err := decodeParams(c.params, &p); err != nil {
		return nil, err
	}
	return h.media.MediaFileNames(ctx, p.Pattern)
}

func (h *Handler) deleteMediaFile(ctx context.Context, c *call) (interface{}, error) {
	var p filenameParams
	if err := decodeParams(c.params, &p); err != nil {
		return nil, err
	}
	return nil, h.media.DeleteMediaFile(ctx, p.Filename)
}
