// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package models

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/goccy/go-json"
)

// APIVersion is the AnkiConnect protocol version spoken by the server.
const APIVersion = 6

// ActionRequest is one AnkiConnect envelope.
//
//	{"action": "addNote", "version": 6, "params": {...}, "key": "..."}
type ActionRequest struct {
	Action  string          `json:"action" validate:"required,max=64"`
	Version int             `json:"version" validate:"gte=0,lte=6"`
	Params  json.RawMessage `json:"params,omitempty"`
	Key     string          `json:"key,omitempty"`
}

// ActionResponse is the version >= 5 reply shape. Error is null on success.
type ActionResponse struct {
	Result interface{} `json:"result"`
	Error  *string     `json:"error"`
}

// MediaSpec is one audio, video or picture entry inside a note payload.
// Data is base64 encoded on the wire.
type MediaSpec struct {
	URL      string   `json:"url,omitempty" validate:"omitempty,url"`
	Filename string   `json:"filename" validate:"required,max=255"`
	Data     string   `json:"data,omitempty"`
	Fields   []string `json:"fields,omitempty"`
	SkipHash string   `json:"skipHash,omitempty"`
}

// MediaList accepts either a single MediaSpec object or an array of them,
// as AnkiConnect does.
type MediaList []MediaSpec

// UnmarshalJSON implements json.Unmarshaler.
func (l *MediaList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}
	if trimmed[0] == '{' {
		var one MediaSpec
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return err
		}
		*l = MediaList{one}
		return nil
	}
	var many []MediaSpec
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// NoteOptions are the per-note options AnkiConnect accepts.
type NoteOptions struct {
	AllowDuplicate bool   `json:"allowDuplicate"`
	DuplicateScope string `json:"duplicateScope,omitempty"`
}

// NoteSpec is the "note" payload of addNote and the elements of
// canAddNotes / addNotes.
type NoteSpec struct {
	DeckName  string            `json:"deckName" validate:"required,max=512"`
	ModelName string            `json:"modelName" validate:"required,max=512"`
	Fields    map[string]string `json:"fields" validate:"required,min=1"`
	Tags      []string          `json:"tags,omitempty" validate:"dive,max=256"`
	Audio     MediaList         `json:"audio,omitempty" validate:"dive"`
	Video     MediaList         `json:"video,omitempty" validate:"dive"`
	Picture   MediaList         `json:"picture,omitempty" validate:"dive"`
	Options   NoteOptions       `json:"options"`
}

// UpdateNoteSpec is the "note" payload of updateNoteFields.
type UpdateNoteSpec struct {
	ID      int64             `json:"id" validate:"required,gt=0"`
	Fields  map[string]string `json:"fields"`
	Audio   MediaList         `json:"audio,omitempty" validate:"dive"`
	Video   MediaList         `json:"video,omitempty" validate:"dive"`
	Picture MediaList         `json:"picture,omitempty" validate:"dive"`
}

// Attachments converts the three media lists of a note payload into
// attachments, in audio, video, picture order.
func Attachments(audio, video, picture MediaList) ([]MediaAttachment, error) {
	out := make([]MediaAttachment, 0, len(audio)+len(video)+len(picture))
	for _, group := range []struct {
		kind MediaKind
		list MediaList
	}{
		{MediaAudio, audio},
		{MediaVideo, video},
		{MediaPicture, picture},
	} {
		for i := range group.list {
			att, err := group.list[i].Attachment(group.kind)
			if err != nil {
				return nil, err
			}
			out = append(out, att)
		}
	}
	return out, nil
}

// Attachment decodes the spec into a MediaAttachment of the given kind.
func (m *MediaSpec) Attachment(kind MediaKind) (MediaAttachment, error) {
	att := MediaAttachment{
		Filename: m.Filename,
		URL:      m.URL,
		Kind:     kind,
		Fields:   m.Fields,
	}
	if m.Data != "" {
		data, err := base64.StdEncoding.DecodeString(m.Data)
		if err != nil {
			return MediaAttachment{}, fmt.Errorf("invalid base64 data for %q: %w", m.Filename, err)
		}
		att.Data = data
	}
	return att, nil
}

// NewNote converts the wire payload into the domain type.
func (n *NoteSpec) NewNote() (NewNote, error) {
	media, err := Attachments(n.Audio, n.Video, n.Picture)
	if err != nil {
		return NewNote{}, err
	}
	return NewNote{
		DeckName:       n.DeckName,
		ModelName:      n.ModelName,
		Fields:         FieldMap(n.Fields).Clone(),
		Tags:           n.Tags,
		Media:          media,
		AllowDuplicate: n.Options.AllowDuplicate,
		DuplicateScope: n.Options.DuplicateScope,
	}, nil
}

// PermissionResult is the requestPermission reply.
type PermissionResult struct {
	Permission    string `json:"permission"`
	RequireAPIKey bool   `json:"requireApiKey,omitempty"`
	Version       int    `json:"version,omitempty"`
}
