// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/afero"

	"github.com/tomtom215/ankibridge/internal/api"
	"github.com/tomtom215/ankibridge/internal/auth"
	"github.com/tomtom215/ankibridge/internal/browse"
	"github.com/tomtom215/ankibridge/internal/config"
	"github.com/tomtom215/ankibridge/internal/database"
	"github.com/tomtom215/ankibridge/internal/logging"
	"github.com/tomtom215/ankibridge/internal/media"
	"github.com/tomtom215/ankibridge/internal/models"
	"github.com/tomtom215/ankibridge/internal/notes"
	ws "github.com/tomtom215/ankibridge/internal/websocket"
)

// app holds the wired components that outlive a request.
type app struct {
	db     *database.DB
	index  *media.Index
	hub    *ws.Hub
	router *api.Router
}

func newApp(ctx context.Context, cfg *config.Config) (a *app, err error) {
	a = &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.db, err = database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("note store: %w", err)
	}
	logging.Info().Msg("Database initialized successfully")

	a.index, err = media.OpenIndex(cfg.Media.IndexPath)
	if err != nil {
		return nil, err
	}
	store, err := media.NewStore(afero.NewOsFs(), cfg.Media.Dir, a.index, cfg.Media.MaxBytes)
	if err != nil {
		return nil, err
	}
	if cfg.Media.IndexPath == "" {
		n, err := store.Reindex(ctx)
		if err != nil {
			return nil, fmt.Errorf("media reindex: %w", err)
		}
		logging.Info().Int("files", n).Msg("In-memory media index rebuilt")
	}
	fetcher := media.NewFetcher(&cfg.Fetch)

	a.hub = ws.NewHub()

	notifier := notes.MultiNotifier{
		a.hub,
		notes.NotifierFunc(func(ctx context.Context, n models.Notification) {
			logging.Ctx(ctx).Info().Str("kind", n.Kind).Int64("note_id", n.NoteID).Msg(n.Message)
		}),
	}
	svc := notes.NewService(a.db, store, fetcher, notifier)

	gate, err := auth.NewGate(&cfg.Security)
	if err != nil {
		return nil, err
	}

	handler := api.NewHandler(svc, a.db, store, newBrowser(cfg.Browse, a.hub), gate)
	handler.SetStatusSources(a.hub, fetcher)

	mw := api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security, gate.OriginAllowed))
	wsHandler := ws.Handler(a.hub, func(r *http.Request) bool {
		return gate.OriginAllowed(r.Header.Get("Origin"))
	})
	a.router = api.NewRouter(handler, mw, wsHandler, cfg.Server.MaxBodyBytes)
	return a, nil
}

// newBrowser builds the guiBrowse sinks from config.
func newBrowser(cfg config.BrowseConfig, hub *ws.Hub) *browse.Browser {
	var sinks []browse.Sink
	if cmd := browse.NewCommandSink(cfg.Command); cmd != nil {
		sinks = append(sinks, cmd)
	}
	if cfg.Broadcast {
		sinks = append(sinks, browse.SinkFunc(hub.BroadcastBrowse))
	}
	if len(sinks) == 0 {
		logging.Warn().Msg("guiBrowse has no sink configured (BROWSE_COMMAND, BROWSE_BROADCAST)")
	}
	return browse.New(sinks...)
}

// Close checkpoints and closes the stores. Safe on a partially built app.
func (a *app) Close() {
	if a.index != nil {
		if err := a.index.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing media index")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}
}
