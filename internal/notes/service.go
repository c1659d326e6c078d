// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

// Package notes implements the note operations behind the AnkiConnect
// actions: duplicate checks, media merging, note updates and inserts.
//
// The package only talks to ports (NoteStore, MediaStore, Fetcher,
// Notifier); the DuckDB store, the media folder and the websocket hub are
// wired in by cmd/server.
package notes

import (
	"context"
	"time"

	"github.com/tomtom215/ankibridge/internal/models"
)

// Service coordinates the note store, media store and notifier.
type Service struct {
	store    NoteStore
	dups     BatchDuplicateFinder
	media    MediaStore
	fetcher  Fetcher
	notifier Notifier
	now      func() time.Time
}

// NewService wires the core. fetcher and notifier may be nil. If store also
// implements BatchDuplicateFinder, homogeneous duplicate checks use it.
func NewService(store NoteStore, media MediaStore, fetcher Fetcher, notifier Notifier) *Service {
	s := &Service{
		store:    store,
		media:    media,
		fetcher:  fetcher,
		notifier: notifier,
		now:      time.Now,
	}
	if finder, ok := store.(BatchDuplicateFinder); ok {
		s.dups = finder
	}
	return s
}

func (s *Service) notify(ctx context.Context, kind, message string, noteID int64) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, models.Notification{
		Kind:    kind,
		Message: message,
		NoteID:  noteID,
		Time:    s.now().UTC(),
	})
}
