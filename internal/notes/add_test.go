// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package notes

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tomtom215/ankibridge/internal/models"
)

func basicNote(front, back string) models.NewNote {
	return models.NewNote{
		DeckName:  "Japanese::Vocab",
		ModelName: "Basic",
		Fields:    models.FieldMap{"Front": front, "Back": back},
		Tags:      []string{"yomitan"},
	}
}

func TestAddNote_Success(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	notifier := &recordingNotifier{}
	svc := NewService(store, newFakeMedia(), nil, notifier)

	note := basicNote("日の出", "sunrise")
	note.Media = []models.MediaAttachment{
		{Filename: "sun.png", Data: []byte("PNG"), Kind: models.MediaPicture, Fields: []string{"Back"}},
	}
	id, err := svc.AddNote(context.Background(), note)
	if err != nil {
		t.Fatalf("AddNote error: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a note id")
	}

	want := []string{"日の出", `sunrise<img src="sun.png">`}
	if got := store.note(id); !reflect.DeepEqual(got, want) {
		t.Errorf("stored fields = %v, want %v", got, want)
	}
	if _, ok := store.decks["Japanese::Vocab"]; !ok {
		t.Error("expected deck to be created")
	}

	n := notifier.all()
	if len(n) != 1 || n[0].Message != MessageNoteAdded || n[0].NoteID != id {
		t.Errorf("notifications = %+v, want one %q", n, MessageNoteAdded)
	}
}

func TestAddNote_MissingFieldsStoredEmpty(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewService(store, newFakeMedia(), nil, nil)

	id, err := svc.AddNote(context.Background(), models.NewNote{
		DeckName:  "Default",
		ModelName: "Sentence",
		Fields:    models.FieldMap{"Sentence": "雨が降る"},
	})
	if err != nil {
		t.Fatalf("AddNote error: %v", err)
	}
	if got := store.note(id); !reflect.DeepEqual(got, []string{"雨が降る", "", ""}) {
		t.Errorf("stored fields = %v", got)
	}
}

func TestAddNote_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(*fakeStore)
		note    models.NewNote
		wantErr error
	}{
		{
			name:    "insert error",
			setup:   func(s *fakeStore) { s.insertErr = errors.New("constraint violation") },
			note:    basicNote("a", "b"),
			wantErr: ErrInsertFailed,
		},
		{
			name:    "zero id",
			setup:   func(s *fakeStore) { s.insertZero = true },
			note:    basicNote("a", "b"),
			wantErr: ErrInsertFailed,
		},
		{
			name:    "duplicate",
			setup:   func(s *fakeStore) { s.addNote("Basic", "a", "old") },
			note:    basicNote("a", "b"),
			wantErr: ErrDuplicateNote,
		},
		{
			name:    "empty first field",
			setup:   func(*fakeStore) {},
			note:    basicNote("  ", "b"),
			wantErr: ErrEmptyNote,
		},
		{
			name:    "unknown model",
			setup:   func(*fakeStore) {},
			note:    models.NewNote{DeckName: "Default", ModelName: "Cloze", Fields: models.FieldMap{"Text": "x"}},
			wantErr: ErrModelNotFound,
		},
		{
			name:    "more fields than the model has",
			setup:   func(*fakeStore) {},
			note:    models.NewNote{DeckName: "Default", ModelName: "Basic", Fields: models.FieldMap{"Front": "a", "Back": "b", "Extra": "c"}},
			wantErr: ErrModelNotFound,
		},
		{
			name:  "media without source",
			setup: func(*fakeStore) {},
			note: func() models.NewNote {
				n := basicNote("a", "b")
				n.Media = []models.MediaAttachment{{Filename: "x.mp3", Kind: models.MediaAudio}}
				return n
			}(),
			wantErr: ErrMediaSourceMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore()
			tt.setup(store)
			notifier := &recordingNotifier{}
			svc := NewService(store, newFakeMedia(), nil, notifier)

			id, err := svc.AddNote(context.Background(), tt.note)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddNote error = %v, want %v", err, tt.wantErr)
			}
			if id != 0 {
				t.Errorf("id = %d, want 0 on failure", id)
			}
			n := notifier.all()
			if len(n) != 1 || n[0].Kind != models.NotificationNoteAddFailed || n[0].Message != MessageNoteAddFailed {
				t.Errorf("notifications = %+v, want one %q", n, MessageNoteAddFailed)
			}
		})
	}
}

func TestAddNote_AllowDuplicate(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addNote("Basic", "a", "old")
	svc := NewService(store, newFakeMedia(), nil, nil)

	note := basicNote("a", "new")
	note.AllowDuplicate = true
	if _, err := svc.AddNote(context.Background(), note); err != nil {
		t.Errorf("AddNote with AllowDuplicate error: %v", err)
	}
}

func TestAddNotes_IndependentResults(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	notifier := &recordingNotifier{}
	svc := NewService(store, newFakeMedia(), nil, notifier)

	results := svc.AddNotes(context.Background(), []models.NewNote{
		basicNote("one", "1"),
		basicNote("one", "dup"),
		basicNote("two", "2"),
	})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil || results[0].ID == 0 {
		t.Errorf("first result = %+v, want success", results[0])
	}
	if !errors.Is(results[1].Err, ErrDuplicateNote) {
		t.Errorf("second result = %+v, want duplicate", results[1])
	}
	if results[2].Err != nil {
		t.Errorf("third result = %+v, want success", results[2])
	}
	if len(notifier.all()) != 3 {
		t.Errorf("expected one notification per note, got %d", len(notifier.all()))
	}
}

func TestMultiNotifier(t *testing.T) {
	t.Parallel()

	a, b := &recordingNotifier{}, &recordingNotifier{}
	var fn int
	m := MultiNotifier{a, nil, b, NotifierFunc(func(context.Context, models.Notification) { fn++ })}
	m.Notify(context.Background(), models.Notification{Kind: models.NotificationNoteAdded})

	if len(a.all()) != 1 || len(b.all()) != 1 || fn != 1 {
		t.Error("every non-nil sink should receive the notification once")
	}
}
