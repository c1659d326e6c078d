// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package database

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// DuplicateKey normalizes a first-field value for duplicate detection:
// markup is reduced to its text (images keep their filename), the result is
// NFC-normalized and runs of whitespace collapse to one space.
//
// "<b>dog</b>", "dog" and " dog " share a key; "Dog" does not.
func DuplicateKey(value string) string {
	return strings.Join(strings.Fields(norm.NFC.String(htmlText(value))), " ")
}

func htmlText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "br", "div", "p", "li":
				b.WriteByte(' ')
			case "img":
				for hasAttr {
					var key, val []byte
					key, val, hasAttr = z.TagAttr()
					if string(key) == "src" {
						b.WriteByte(' ')
						b.Write(val)
						b.WriteByte(' ')
					}
				}
			}
		}
	}
}
