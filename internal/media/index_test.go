// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package media

import (
	"testing"
)

func TestIndex_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	idx, err := OpenIndex(dir)
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	if err := idx.Put("abc", "a.png"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := idx.Put("def", "d.png"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := idx.Forget("d.png"); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if err := idx.RunGC(); err != nil {
		t.Errorf("RunGC: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	idx, err = OpenIndex(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer idx.Close()

	name, ok, err := idx.Lookup("abc")
	if err != nil || !ok || name != "a.png" {
		t.Errorf("Lookup(abc) = %q, %v, %v", name, ok, err)
	}
	if _, ok, _ := idx.Lookup("def"); ok {
		t.Error("forgotten hash still indexed")
	}
}

func TestIndex_InMemoryGCIsNoop(t *testing.T) {
	idx, err := OpenIndex("")
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	defer idx.Close()

	if err := idx.RunGC(); err != nil {
		t.Errorf("RunGC: %v", err)
	}
}
