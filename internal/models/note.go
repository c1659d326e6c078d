// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FieldMap maps field names to field values.
type FieldMap map[string]string

// Clone returns a shallow copy of m.
func (m FieldMap) Clone() FieldMap {
	out := make(FieldMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SortedKeys returns the field names in lexicographic order.
func (m FieldMap) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NoteCandidate is a prospective note reduced to the data the duplicate
// check needs: its note type and the value of its first field.
type NoteCandidate struct {
	ModelName  string
	FieldName  string
	FieldValue string
}

// MediaKind selects how an attachment is referenced from a field.
type MediaKind string

const (
	MediaAudio   MediaKind = "audio"
	MediaVideo   MediaKind = "video"
	MediaPicture MediaKind = "picture"
)

// ParseMediaKind converts a wire name to a MediaKind.
func ParseMediaKind(s string) (MediaKind, error) {
	switch MediaKind(strings.ToLower(s)) {
	case MediaAudio:
		return MediaAudio, nil
	case MediaVideo:
		return MediaVideo, nil
	case MediaPicture:
		return MediaPicture, nil
	default:
		return "", fmt.Errorf("unknown media kind %q", s)
	}
}

// MediaAttachment is a file to persist into the media folder and reference
// from Fields. Exactly one of Data or URL is normally set; Data wins when
// both are.
type MediaAttachment struct {
	Filename string
	Data     []byte
	URL      string
	Kind     MediaKind
	Fields   []string
}

// HasSource reports whether the attachment carries bytes or a URL.
func (a *MediaAttachment) HasSource() bool {
	return len(a.Data) > 0 || a.URL != ""
}

// NewNote is a note to insert.
type NewNote struct {
	DeckName  string
	ModelName string
	Fields    FieldMap
	Tags      []string
	Media     []MediaAttachment

	// AllowDuplicate skips the first-field duplicate check.
	AllowDuplicate bool

	// DuplicateScope is carried from the request but not consulted: the
	// duplicate check always spans every deck of the note type.
	DuplicateScope string
}

// NoteField is one field of a NoteInfo.
type NoteField struct {
	Value string `json:"value"`
	Order int    `json:"order"`
}

// NoteInfo is the read-side view of a stored note.
type NoteInfo struct {
	NoteID    int64                `json:"noteId"`
	ModelName string               `json:"modelName"`
	DeckName  string               `json:"deckName"`
	Tags      []string             `json:"tags"`
	Fields    map[string]NoteField `json:"fields"`
	Modified  time.Time            `json:"-"`
	Mod       int64                `json:"mod"`
}

// Notification kinds published by the note core.
const (
	NotificationNoteAdded     = "note_added"
	NotificationNoteAddFailed = "note_add_failed"
	NotificationNoteUpdated   = "note_updated"
)

// Notification is a user-visible event about a note operation.
type Notification struct {
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	NoteID  int64     `json:"note_id,omitempty"`
	Time    time.Time `json:"time"`
}
