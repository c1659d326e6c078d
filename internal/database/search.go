// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

/*
search.go - Note Search Dialect

A subset of the Anki browser search syntax used by findNotes and the
per-candidate existence check. Terms are separated by whitespace and all
must match (implicit AND):

	dog                 any field contains "dog"
	"a phrase"          double quotes group words
	front:dog           field "front" is exactly "dog"
	deck:Spanish        deck Spanish or any Spanish::child
	note:Basic          note type Basic
	tag:verb            tag verb or any verb::child
	nid:123,456         note ids
	-tag:leech          leading minus negates

All matching is case-insensitive. In values, '*' matches any run of
characters and '_' matches one; a backslash makes the next character
literal. "or" and parentheses are not supported.
*/

package database

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidSearch wraps every search parse failure.
var ErrInvalidSearch = errors.New("invalid search")

type termKind int

const (
	termText termKind = iota
	termField
	termDeck
	termNoteType
	termTag
	termNoteID
)

type matchMode int

const (
	matchContains matchMode = iota
	matchExact
	matchHierarchy
)

type searchTerm struct {
	kind    termKind
	negate  bool
	field   string
	pattern *regexp.Regexp
	// needle is the lowercased value when it has no wildcards. Positive
	// text and field terms use it to narrow the SQL scan.
	needle string
	ids    map[int64]bool
}

type searchQuery struct {
	terms []searchTerm
}

// searchable is the view of a note that terms match against.
type searchable struct {
	id         int64
	noteType   string
	deck       string
	fieldNames []string
	fields     []string
	tags       []string
}

func parseSearch(query string) (*searchQuery, error) {
	tokens, err := tokenizeSearch(query)
	if err != nil {
		return nil, err
	}

	q := &searchQuery{}
	for _, tok := range tokens {
		if strings.EqualFold(tok, "and") {
			continue
		}
		if strings.EqualFold(tok, "or") || strings.HasPrefix(tok, "(") {
			return nil, fmt.Errorf("%w: %q is not supported", ErrInvalidSearch, tok)
		}
		term, err := parseTerm(tok)
		if err != nil {
			return nil, err
		}
		q.terms = append(q.terms, term)
	}
	return q, nil
}

// tokenizeSearch splits on unquoted whitespace. Quotes are dropped, \" becomes
// a literal quote and every other escape is kept for the pattern compiler.
func tokenizeSearch(query string) ([]string, error) {
	var (
		tokens   []string
		cur      strings.Builder
		inQuote  bool
		hasToken bool
	)
	flush := func() {
		if hasToken {
			tokens = append(tokens, cur.String())
			cur.Reset()
			hasToken = false
		}
	}

	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\\' && i+1 < len(query):
			i++
			if query[i] != '"' {
				cur.WriteByte('\\')
			}
			cur.WriteByte(query[i])
			hasToken = true
		case c == '"':
			inQuote = !inQuote
			hasToken = true
		case !inQuote && (c == ' ' || c == '\t' || c == '\n' || c == '\r'):
			flush()
		default:
			cur.WriteByte(c)
			hasToken = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("%w: unterminated quote", ErrInvalidSearch)
	}
	flush()
	return tokens, nil
}

func parseTerm(tok string) (searchTerm, error) {
	var term searchTerm
	if len(tok) > 1 && tok[0] == '-' {
		term.negate = true
		tok = tok[1:]
	}

	prefix, value, hasPrefix := splitUnescaped(tok, ':')
	if !hasPrefix || prefix == "" {
		term.kind = termText
		return term, term.compile(tok, matchContains)
	}

	// An escaped prefix is always a field name.
	switch strings.ToLower(prefix) {
	case "deck":
		term.kind = termDeck
		return term, term.compile(value, matchHierarchy)
	case "note":
		term.kind = termNoteType
		return term, term.compile(value, matchExact)
	case "tag":
		term.kind = termTag
		return term, term.compile(value, matchHierarchy)
	case "nid":
		term.kind = termNoteID
		term.ids = make(map[int64]bool)
		for _, part := range strings.Split(value, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return term, fmt.Errorf("%w: bad note id %q", ErrInvalidSearch, part)
			}
			term.ids[id] = true
		}
		return term, nil
	default:
		term.kind = termField
		term.field = unescapeSearch(prefix)
		return term, term.compile(value, matchExact)
	}
}

func (t *searchTerm) compile(value string, mode matchMode) error {
	var (
		re       strings.Builder
		literal  strings.Builder
		wildcard bool
	)

	re.WriteString("(?is)")
	if mode != matchContains {
		re.WriteByte('^')
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c == '\\' && i+1 < len(value):
			i++
			re.WriteString(regexp.QuoteMeta(value[i : i+1]))
			literal.WriteByte(value[i])
		case c == '*':
			re.WriteString(".*")
			wildcard = true
		case c == '_':
			re.WriteByte('.')
			wildcard = true
		default:
			re.WriteString(regexp.QuoteMeta(value[i : i+1]))
			literal.WriteByte(c)
		}
	}
	switch mode {
	case matchExact:
		re.WriteByte('$')
	case matchHierarchy:
		re.WriteString("(?:::.*)?$")
	}

	pattern, err := regexp.Compile(re.String())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSearch, err)
	}
	t.pattern = pattern
	if !wildcard {
		t.needle = strings.ToLower(literal.String())
	}
	return nil
}

func (t *searchTerm) matches(n *searchable) bool {
	return t.rawMatch(n) != t.negate
}

func (t *searchTerm) rawMatch(n *searchable) bool {
	switch t.kind {
	case termNoteID:
		return t.ids[n.id]
	case termDeck:
		return t.pattern.MatchString(n.deck)
	case termNoteType:
		return t.pattern.MatchString(n.noteType)
	case termTag:
		for _, tag := range n.tags {
			if t.pattern.MatchString(tag) {
				return true
			}
		}
		return false
	case termField:
		for i, name := range n.fieldNames {
			if strings.EqualFold(name, t.field) && i < len(n.fields) {
				return t.pattern.MatchString(n.fields[i])
			}
		}
		return false
	default:
		for _, f := range n.fields {
			if t.pattern.MatchString(f) {
				return true
			}
		}
		return false
	}
}

func (q *searchQuery) matches(n *searchable) bool {
	for i := range q.terms {
		if !q.terms[i].matches(n) {
			return false
		}
	}
	return true
}

// needles returns literal substrings every matching note must contain.
func (q *searchQuery) needles() []string {
	var out []string
	for _, t := range q.terms {
		if t.negate || t.needle == "" {
			continue
		}
		if t.kind == termText || t.kind == termField {
			out = append(out, t.needle)
		}
	}
	return out
}

// splitUnescaped splits s at the first sep not preceded by a backslash.
func splitUnescaped(s string, sep byte) (before, after string, found bool) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case sep:
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

func unescapeSearch(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// EscapeSearchValue escapes the characters the search dialect treats
// specially inside a quoted field value.
func EscapeSearchValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\', '"', '*', '_':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FieldEqualsQuery builds a search for notes whose field equals value. The
// name always starts with an escape, so a field called Deck, Tag, Note or
// Nid (or one starting with '-') is never read as a keyword or negation.
func FieldEqualsQuery(field, value string) string {
	name := strings.NewReplacer(`\`, `\\`, `"`, `\"`, `:`, `\:`).Replace(field)
	if name != "" && name[0] != '\\' {
		name = `\` + name
	}
	return `"` + name + ":" + EscapeSearchValue(value) + `"`
}
