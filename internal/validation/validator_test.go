// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}

type testParams struct {
	DeckName string            `json:"deckName" validate:"required,max=8"`
	Fields   map[string]string `json:"fields" validate:"required,min=1"`
	Tags     []string          `json:"tags" validate:"dive,ankitag"`
	Version  int               `json:"version" validate:"gte=0,lte=6"`
	URL      string            `json:"url" validate:"omitempty,url"`
}

func TestValidateStruct(t *testing.T) {
	valid := testParams{DeckName: "Default", Fields: map[string]string{"Front": "x"}, Tags: []string{"verb"}}

	tests := []struct {
		name    string
		mutate  func(p *testParams)
		wantMsg string
	}{
		{"valid", func(p *testParams) {}, ""},
		{"missing deck", func(p *testParams) { p.DeckName = "" }, "deckName is required"},
		{"long deck", func(p *testParams) { p.DeckName = "123456789" }, "deckName must have at most 8 characters"},
		{"empty fields", func(p *testParams) { p.Fields = map[string]string{} }, "fields must have at least 1 items"},
		{"tag with space", func(p *testParams) { p.Tags = []string{"two words"} }, "tags[0] must be a non-empty tag without spaces"},
		{"version", func(p *testParams) { p.Version = 7 }, "version must be less than or equal to 6"},
		{"url", func(p *testParams) { p.URL = "not a url" }, "url must be a valid URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := ValidateStruct(&p)
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateStruct_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&testParams{})
	var ve *RequestValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %T, want *RequestValidationError", err)
	}
	if len(ve.Errors()) != 2 {
		t.Fatalf("errors = %v", ve.Errors())
	}
	if ve.Errors()[0].Field() != "deckName" || ve.Errors()[0].Tag() != "required" {
		t.Errorf("first error = %+v", ve.Errors()[0])
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("combined message = %q", err.Error())
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	if err := ValidateStruct("not a struct"); err == nil {
		t.Error("expected error for non-struct input")
	}
}
