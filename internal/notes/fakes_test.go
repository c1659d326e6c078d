// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package notes

import (
	"context"
	"errors"
	"sync"

	"github.com/tomtom215/ankibridge/internal/models"
)

type fakeModel struct {
	id     int64
	fields []string
}

type fakeNote struct {
	modelID int64
	values  []string
	tags    []string
}

// fakeStore is an in-memory NoteStore with the batched duplicate capability.
type fakeStore struct {
	mu sync.Mutex

	models map[string]fakeModel
	notes  map[int64]*fakeNote
	decks  map[string]int64
	nextID int64

	resolveCalls int
	findCalls    int
	queryCalls   []string

	resolveErr     error
	findErr        error
	insertErr      error
	insertZero     bool
	replaceErr     error
	valuesOverride []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		models: map[string]fakeModel{
			"Basic":    {id: 100, fields: []string{"Front", "Back"}},
			"Sentence": {id: 200, fields: []string{"Sentence", "Translation", "Audio"}},
		},
		notes:  map[int64]*fakeNote{},
		decks:  map[string]int64{"Default": 1},
		nextID: 1000,
	}
}

func (f *fakeStore) addNote(modelName string, values ...string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.notes[f.nextID] = &fakeNote{modelID: f.models[modelName].id, values: values}
	return f.nextID
}

func (f *fakeStore) ResolveModelID(_ context.Context, name string, minFields int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolveCalls++
	if f.resolveErr != nil {
		return 0, f.resolveErr
	}
	m, ok := f.models[name]
	if !ok || len(m.fields) < minFields {
		return 0, ErrModelNotFound
	}
	return m.id, nil
}

func (f *fakeStore) FindDuplicates(_ context.Context, modelID int64, values []string) (map[int]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := map[int]bool{}
	for i, v := range values {
		for _, n := range f.notes {
			if n.modelID == modelID && len(n.values) > 0 && n.values[0] == v {
				out[i] = true
			}
		}
	}
	return out, nil
}

func (f *fakeStore) QueryExists(_ context.Context, fieldName, fieldValue string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls = append(f.queryCalls, fieldName+":"+fieldValue)
	for _, n := range f.notes {
		for _, m := range f.models {
			if m.id != n.modelID {
				continue
			}
			for i, name := range m.fields {
				if name == fieldName && i < len(n.values) && n.values[i] == fieldValue {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

func (f *fakeStore) ResolveDeckID(_ context.Context, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.decks[name]; ok {
		return id, nil
	}
	id := int64(len(f.decks) + 1)
	f.decks[name] = id
	return id, nil
}

func (f *fakeStore) ModelFieldNames(_ context.Context, modelID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.models {
		if m.id == modelID {
			return m.fields, nil
		}
	}
	return nil, ErrModelNotFound
}

func (f *fakeStore) NoteSchemaFieldNames(_ context.Context, noteID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[noteID]
	if !ok {
		return nil, ErrNoteNotFound
	}
	for _, m := range f.models {
		if m.id == n.modelID {
			return m.fields, nil
		}
	}
	return nil, ErrModelNotFound
}

func (f *fakeStore) NoteFieldValues(_ context.Context, noteID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.valuesOverride != nil {
		return f.valuesOverride, nil
	}
	n, ok := f.notes[noteID]
	if !ok {
		return nil, ErrNoteNotFound
	}
	return append([]string(nil), n.values...), nil
}

func (f *fakeStore) ReplaceNoteFields(_ context.Context, noteID int64, values []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	n, ok := f.notes[noteID]
	if !ok {
		return ErrNoteNotFound
	}
	n.values = append([]string(nil), values...)
	return nil
}

func (f *fakeStore) InsertNote(_ context.Context, modelID, _ int64, values, tags []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	if f.insertZero {
		return 0, nil
	}
	f.nextID++
	f.notes[f.nextID] = &fakeNote{modelID: modelID, values: append([]string(nil), values...), tags: tags}
	return f.nextID, nil
}

func (f *fakeStore) note(id int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.notes[id]; ok {
		return n.values
	}
	return nil
}

// plainStore hides FindDuplicates so the per-item path is taken.
type plainStore struct {
	NoteStore
}

// fakeMedia records stored files. assign maps requested names to the name
// the store hands back.
type fakeMedia struct {
	mu     sync.Mutex
	files  map[string][]byte
	assign map[string]string
	calls  []string
	err    error
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{files: map[string][]byte{}, assign: map[string]string{}}
}

func (m *fakeMedia) StoreMediaFile(_ context.Context, filename string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, filename)
	if m.err != nil {
		return "", m.err
	}
	name := filename
	if assigned, ok := m.assign[filename]; ok {
		name = assigned
	}
	m.files[name] = data
	return name, nil
}

type fakeFetcher struct {
	bodies map[string][]byte
	calls  []string
}

var errNotFound = errors.New("404 not found")

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	if b, ok := f.bodies[url]; ok {
		return b, nil
	}
	return nil, errNotFound
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []models.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recordingNotifier) all() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification(nil), r.items...)
}
