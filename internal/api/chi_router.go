// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/ankibridge/internal/middleware"
)

// defaultMaxBodyBytes bounds envelopes when no limit is configured. Inline
// base64 media makes large bodies normal.
const defaultMaxBodyBytes = 64 << 20

// Router wires the handler into a chi route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	websocket     http.HandlerFunc
	maxBodyBytes  int64
}

// NewRouter creates a router. ws may be nil to disable the websocket route.
func NewRouter(handler *Handler, mw *ChiMiddleware, ws http.HandlerFunc, maxBodyBytes int64) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
		websocket:     ws,
		maxBodyBytes:  maxBodyBytes,
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's signature.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi builds the route tree.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})
	r.Handle("/metrics", promhttp.Handler())

	if router.websocket != nil {
		r.Get("/ws", router.websocket)
	}

	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chimiddleware.RequestSize(router.maxBodyBytes))

		r.Get("/", router.handler.Banner)
		r.Post("/", router.handler.Actions)
	})

	return r
}
