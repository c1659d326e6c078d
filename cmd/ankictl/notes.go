// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package main

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/ankibridge/internal/models"
)

func newDecksCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "decks",
		Short: "List deck names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := c.client().DeckNames(cmd.Context())
			if err != nil {
				return err
			}
			printLines(cmd.OutOrStdout(), names)
			return nil
		},
	}
}

func newModelsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List note type names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := c.client().ModelNames(cmd.Context())
			if err != nil {
				return err
			}
			printLines(cmd.OutOrStdout(), names)
			return nil
		},
	}
}

func newFieldsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "fields <model>",
		Short: "List a note type's fields in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := c.client().ModelFieldNames(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printLines(cmd.OutOrStdout(), names)
			return nil
		},
	}
}

func newFindCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "find <query>",
		Short: "Print the ids of notes matching a search query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := c.client().FindNotes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, id := range ids {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newInfoCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "info <note-id>...",
		Short: "Print notes as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			infos, err := c.client().NotesInfo(cmd.Context(), ids)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), infos)
		},
	}
}

// noteFlags are shared by add and can-add.
type noteFlags struct {
	deck           string
	model          string
	fields         []string
	tags           []string
	attach         []string
	allowDuplicate bool
}

func (f *noteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.deck, "deck", "Default", "Target deck.")
	cmd.Flags().StringVar(&f.model, "model", "Basic", "Note type.")
	cmd.Flags().StringArrayVar(&f.fields, "field", nil, "Field value as Name=Value (repeatable).")
	cmd.Flags().StringArrayVar(&f.tags, "tag", nil, "Tag (repeatable).")
	cmd.Flags().StringArrayVar(&f.attach, "attach", nil, "Media as kind,Field,URL with kind audio|video|picture (repeatable).")
	cmd.Flags().BoolVar(&f.allowDuplicate, "allow-duplicate", false, "Skip the duplicate check.")
}

func (f *noteFlags) spec() (models.NoteSpec, error) {
	fields, err := parseFields(f.fields)
	if err != nil {
		return models.NoteSpec{}, err
	}
	note := models.NoteSpec{
		DeckName:  f.deck,
		ModelName: f.model,
		Fields:    fields,
		Tags:      f.tags,
		Options:   models.NoteOptions{AllowDuplicate: f.allowDuplicate},
	}
	for _, a := range f.attach {
		if err := attach(&note.Audio, &note.Video, &note.Picture, a); err != nil {
			return models.NoteSpec{}, err
		}
	}
	return note, nil
}

func newAddCmd(c *cli) *cobra.Command {
	var flags noteFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a note and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			note, err := flags.spec()
			if err != nil {
				return err
			}
			id, err := c.client().AddNote(cmd.Context(), note)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newCanAddCmd(c *cli) *cobra.Command {
	var flags noteFlags
	cmd := &cobra.Command{
		Use:   "can-add",
		Short: "Report whether a note could be added without a duplicate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			note, err := flags.spec()
			if err != nil {
				return err
			}
			res, err := c.client().CanAddNotes(cmd.Context(), []models.NoteSpec{note})
			if err != nil {
				return err
			}
			if len(res) != 1 {
				return fmt.Errorf("expected one result, got %d", len(res))
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), res[0])
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newUpdateCmd(c *cli) *cobra.Command {
	var fieldArgs, attachArgs []string
	cmd := &cobra.Command{
		Use:   "update <note-id>",
		Short: "Update some fields of a note, keeping the rest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			fields, err := parseFields(fieldArgs)
			if err != nil {
				return err
			}
			note := models.UpdateNoteSpec{ID: ids[0], Fields: fields}
			for _, a := range attachArgs {
				if err := attach(&note.Audio, &note.Video, &note.Picture, a); err != nil {
					return err
				}
			}
			return c.client().UpdateNoteFields(cmd.Context(), note)
		},
	}
	cmd.Flags().StringArrayVar(&fieldArgs, "field", nil, "Field value as Name=Value (repeatable).")
	cmd.Flags().StringArrayVar(&attachArgs, "attach", nil, "Media as kind,Field,URL (repeatable).")
	return cmd
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid note id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseFields(args []string) (map[string]string, error) {
	fields := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid field %q, want Name=Value", arg)
		}
		fields[name] = value
	}
	return fields, nil
}

// attach parses kind,Field,URL and appends it to the list for kind. The
// filename is taken from the URL path.
func attach(audio, video, picture *models.MediaList, arg string) error {
	parts := strings.SplitN(arg, ",", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return fmt.Errorf("invalid attachment %q, want kind,Field,URL", arg)
	}
	name := path.Base(parts[2])
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if name == "" || name == "." || name == "/" {
		name = "media"
	}
	spec := models.MediaSpec{URL: parts[2], Filename: name, Fields: []string{parts[1]}}

	kind, err := models.ParseMediaKind(parts[0])
	if err != nil {
		return err
	}
	switch kind {
	case models.MediaAudio:
		*audio = append(*audio, spec)
	case models.MediaVideo:
		*video = append(*video, spec)
	default:
		*picture = append(*picture, spec)
	}
	return nil
}
