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
	"github.com/tomtom215/ankibridge/internal/models"
)

// Enclose returns the field markup referencing a stored media file.
func Enclose(kind models.MediaKind, filename string) (string, error) {
	switch kind {
	case models.MediaAudio, models.MediaVideo:
		return "[sound:" + filename + "]", nil
	case models.MediaPicture:
		return `<img src="` + filename + `">`, nil
	default:
		return "", fmt.Errorf("unknown media kind %q", kind)
	}
}

// validateAttachments rejects the whole batch before anything is stored.
func validateAttachments(attachments []models.MediaAttachment) error {
	for i := range attachments {
		att := &attachments[i]
		if !att.HasSource() {
			return fmt.Errorf("%w (media file %q)", ErrMediaSourceMissing, att.Filename)
		}
		if _, err := Enclose(att.Kind, att.Filename); err != nil {
			return err
		}
	}
	return nil
}

// MergeMedia stores every attachment and appends its markup to each of its
// target fields that exists in fields, in attachment order. fields is only
// modified when every attachment was stored; it is returned for chaining.
//
// The markup always uses the filename assigned by the media store.
func (s *Service) MergeMedia(ctx context.Context, fields models.FieldMap, attachments []models.MediaAttachment) (models.FieldMap, error) {
	if err := validateAttachments(attachments); err != nil {
		return nil, err
	}

	appendix := make(map[string]*strings.Builder)
	for i := range attachments {
		att := &attachments[i]
		name, err := s.persist(ctx, att)
		if err != nil {
			return nil, err
		}
		markup, _ := Enclose(att.Kind, name)

		for _, target := range att.Fields {
			if _, ok := fields[target]; !ok {
				continue
			}
			b, ok := appendix[target]
			if !ok {
				b = &strings.Builder{}
				appendix[target] = b
			}
			b.WriteString(markup)
		}
	}

	for target, b := range appendix {
		fields[target] += b.String()
	}
	return fields, nil
}

// StoreMedia persists a single attachment and returns the assigned name.
func (s *Service) StoreMedia(ctx context.Context, att models.MediaAttachment) (string, error) {
	if !att.HasSource() {
		return "", fmt.Errorf("%w (media file %q)", ErrMediaSourceMissing, att.Filename)
	}
	return s.persist(ctx, &att)
}

func (s *Service) persist(ctx context.Context, att *models.MediaAttachment) (string, error) {
	data := att.Data
	if len(data) == 0 {
		if s.fetcher == nil {
			return "", ErrFetchDisabled
		}
		fetched, err := s.fetcher.Fetch(ctx, att.URL)
		if err != nil {
			return "", fmt.Errorf("failed to fetch media %q: %w", att.Filename, err)
		}
		data = fetched
	}

	name, err := s.media.StoreMediaFile(ctx, att.Filename, data)
	if err != nil {
		return "", fmt.Errorf("failed to store media %q: %w", att.Filename, err)
	}
	if name != att.Filename {
		logging.Ctx(ctx).Debug().Str("requested", att.Filename).Str("stored", name).Msg("media stored under a different name")
	}
	return name, nil
}
