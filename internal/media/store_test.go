// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package media

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func setupTestStore(t *testing.T, maxBytes int64) (*Store, afero.Fs) {
	t.Helper()

	index, err := OpenIndex("")
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	t.Cleanup(func() {
		if err := index.Close(); err != nil {
			t.Errorf("close index: %v", err)
		}
	})

	fs := afero.NewMemMapFs()
	store, err := NewStore(fs, "/media", index, maxBytes)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	n := 0
	store.suffix = func() string {
		n++
		return string(rune('a' + n - 1))
	}
	return store, fs
}

func TestStoreMediaFile_NewFile(t *testing.T) {
	store, fs := setupTestStore(t, 0)
	ctx := context.Background()

	name, err := store.StoreMediaFile(ctx, "dog.mp3", []byte("woof"))
	if err != nil {
		t.Fatalf("StoreMediaFile: %v", err)
	}
	if name != "dog.mp3" {
		t.Errorf("name = %q, want dog.mp3", name)
	}
	data, err := afero.ReadFile(fs, "/media/dog.mp3")
	if err != nil || string(data) != "woof" {
		t.Errorf("file = %q, %v", data, err)
	}
}

func TestStoreMediaFile_SameContentDifferentName(t *testing.T) {
	store, _ := setupTestStore(t, 0)
	ctx := context.Background()

	first, _ := store.StoreMediaFile(ctx, "dog.mp3", []byte("woof"))
	second, err := store.StoreMediaFile(ctx, "perro.mp3", []byte("woof"))
	if err != nil {
		t.Fatalf("StoreMediaFile: %v", err)
	}
	if second != first {
		t.Errorf("identical content stored as %q, want existing %q", second, first)
	}
	names, _ := store.MediaFileNames(ctx, "*")
	if len(names) != 1 {
		t.Errorf("names = %v, want one file", names)
	}
}

func TestStoreMediaFile_NameTakenByOtherContent(t *testing.T) {
	store, _ := setupTestStore(t, 0)
	ctx := context.Background()

	if _, err := store.StoreMediaFile(ctx, "dog.mp3", []byte("woof")); err != nil {
		t.Fatal(err)
	}
	name, err := store.StoreMediaFile(ctx, "dog.mp3", []byte("bark"))
	if err != nil {
		t.Fatalf("StoreMediaFile: %v", err)
	}
	if name != "dog-a.mp3" {
		t.Errorf("name = %q, want dog-a.mp3", name)
	}

	got, err := store.RetrieveMediaFile(ctx, "dog.mp3")
	if err != nil || string(got) != "woof" {
		t.Errorf("original overwritten: %q, %v", got, err)
	}
}

func TestStoreMediaFile_ExistingFileSameContent(t *testing.T) {
	store, fs := setupTestStore(t, 0)
	ctx := context.Background()

	// A file that predates the index.
	if err := afero.WriteFile(fs, "/media/cat.png", []byte("meow"), 0o640); err != nil {
		t.Fatal(err)
	}
	name, err := store.StoreMediaFile(ctx, "cat.png", []byte("meow"))
	if err != nil || name != "cat.png" {
		t.Errorf("StoreMediaFile = %q, %v; want cat.png", name, err)
	}
}

func TestStoreMediaFile_Limits(t *testing.T) {
	store, _ := setupTestStore(t, 4)
	ctx := context.Background()

	if _, err := store.StoreMediaFile(ctx, "big.bin", []byte("12345")); !errors.Is(err, ErrTooLarge) {
		t.Errorf("oversize err = %v, want ErrTooLarge", err)
	}
	if _, err := store.StoreMediaFile(ctx, "../", []byte("x")); !errors.Is(err, ErrInvalidFilename) {
		t.Errorf("bad name err = %v, want ErrInvalidFilename", err)
	}
}

func TestRetrieveAndDelete(t *testing.T) {
	store, _ := setupTestStore(t, 0)
	ctx := context.Background()

	if _, err := store.RetrieveMediaFile(ctx, "missing.mp3"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v, want ErrNotFound", err)
	}

	name, _ := store.StoreMediaFile(ctx, "a.mp3", []byte("abc"))
	if err := store.DeleteMediaFile(ctx, name); err != nil {
		t.Fatalf("DeleteMediaFile: %v", err)
	}
	if err := store.DeleteMediaFile(ctx, name); err != nil {
		t.Errorf("second delete: %v", err)
	}

	// Deleted content is stored afresh rather than resolved to a dead name.
	again, err := store.StoreMediaFile(ctx, "b.mp3", []byte("abc"))
	if err != nil || again != "b.mp3" {
		t.Errorf("store after delete = %q, %v", again, err)
	}
}

func TestMediaFileNames(t *testing.T) {
	store, fs := setupTestStore(t, 0)
	ctx := context.Background()

	for _, n := range []string{"b.mp3", "a.mp3", "c.png"} {
		if _, err := store.StoreMediaFile(ctx, n, []byte(n)); err != nil {
			t.Fatal(err)
		}
	}
	_ = afero.WriteFile(fs, "/media/.hidden", []byte("x"), 0o640)

	tests := []struct {
		pattern string
		want    []string
	}{
		{"", []string{"a.mp3", "b.mp3", "c.png"}},
		{"*.mp3", []string{"a.mp3", "b.mp3"}},
		{"{a,c}.*", []string{"a.mp3", "c.png"}},
		{"z*", []string{}},
	}
	for _, tt := range tests {
		got, err := store.MediaFileNames(ctx, tt.pattern)
		if err != nil {
			t.Fatalf("MediaFileNames(%q): %v", tt.pattern, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("MediaFileNames(%q) = %v, want %v", tt.pattern, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("MediaFileNames(%q)[%d] = %q, want %q", tt.pattern, i, got[i], tt.want[i])
			}
		}
	}

	if _, err := store.MediaFileNames(ctx, "[unclosed"); err == nil {
		t.Error("invalid pattern should fail")
	}
}

func TestReindex(t *testing.T) {
	store, fs := setupTestStore(t, 0)
	ctx := context.Background()

	_ = afero.WriteFile(fs, "/media/old.mp3", []byte("legacy"), 0o640)
	n, err := store.Reindex(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Reindex = %d, %v", n, err)
	}
	name, err := store.StoreMediaFile(ctx, "new.mp3", []byte("legacy"))
	if err != nil || name != "old.mp3" {
		t.Errorf("after reindex stored as %q, %v; want old.mp3", name, err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"dog.mp3", "dog.mp3", false},
		{"dir/dog.mp3", "dog.mp3", false},
		{`C:\media\dog.mp3`, "dog.mp3", false},
		{"what?.png", "what.png", false},
		{"tab\there.jpg", "tabhere.jpg", false},
		{"", "", true},
		{"..", "", true},
		{".env", "", true},
		{"a/", "a", false},
	}
	for _, tt := range tests {
		got, err := SanitizeFilename(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("SanitizeFilename(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	composed, _ := SanitizeFilename("caf\u00e9.mp3")
	decomposed, _ := SanitizeFilename("cafe\u0301.mp3")
	if !bytes.Equal([]byte(composed), []byte(decomposed)) {
		t.Errorf("NFC mismatch: %q vs %q", composed, decomposed)
	}
}
