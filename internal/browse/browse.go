// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

// Package browse forwards guiBrowse requests to whatever can show them: an
// opener command on the host and/or websocket clients.
package browse

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/tomtom215/ankibridge/internal/logging"
)

// CallbackURL is the browser deep link prefix. The query is appended as-is.
const CallbackURL = "anki://x-callback-url/browser?search="

// ErrNoSink means browsing is not configured.
var ErrNoSink = errors.New("no browse target is configured")

// URL returns the deep link for query.
func URL(query string) string {
	return CallbackURL + query
}

// Sink receives a browse request.
type Sink interface {
	Browse(ctx context.Context, query, url string) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, query, url string) error

// Browse implements Sink.
func (f SinkFunc) Browse(ctx context.Context, query, url string) error { return f(ctx, query, url) }

// Browser fans a request out to its sinks.
type Browser struct {
	sinks []Sink
}

// New returns a Browser over the non-nil sinks.
func New(sinks ...Sink) *Browser {
	b := &Browser{}
	for _, s := range sinks {
		if s != nil {
			b.sinks = append(b.sinks, s)
		}
	}
	return b
}

// Browse sends query to every sink. All sinks are tried; their errors are
// joined.
func (b *Browser) Browse(ctx context.Context, query string) error {
	if len(b.sinks) == 0 {
		return ErrNoSink
	}

	link := URL(query)
	var errs []error
	for _, s := range b.sinks {
		if err := s.Browse(ctx, query, link); err != nil {
			errs = append(errs, err)
		}
	}
	logging.Ctx(ctx).Info().Str("query", query).Int("sinks", len(b.sinks)).Int("failed", len(errs)).Msg("Browse requested")
	return errors.Join(errs...)
}

// CommandSink runs an opener such as "xdg-open" with the deep link as its
// last argument.
type CommandSink struct {
	name    string
	args    []string
	timeout time.Duration

	run func(ctx context.Context, name string, args ...string) error
}

// NewCommandSink parses command ("open -a Anki") into a sink. It returns nil
// for a blank command.
func NewCommandSink(command string) *CommandSink {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return nil
	}
	return &CommandSink{
		name:    parts[0],
		args:    parts[1:],
		timeout: 10 * time.Second,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

// Browse implements Sink.
func (c *CommandSink) Browse(ctx context.Context, _, url string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := append(append([]string(nil), c.args...), url)
	if err := c.run(ctx, c.name, args...); err != nil {
		return fmt.Errorf("browse command %s: %w", c.name, err)
	}
	return nil
}
