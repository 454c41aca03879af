// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/warden-console/warden/internal/middleware"
)

// Router wires handlers and middleware into the HTTP surface.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router with the given middleware configuration.
func NewRouter(handler *Handler, mwConfig *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// Setup builds the full route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	h := router.handler

	// Applied to all routes, in order. CORS is global so OPTIONS preflight
	// works everywhere.
	r.Use(middleware.RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/view", h.ViewState)
		r.Post("/view/filter", h.UpdateFilter)
		r.Post("/view/match/next", h.NextMatch)
		r.Post("/view/match/prev", h.PrevMatch)
		r.Post("/view/pause", h.Pause)
		r.Post("/view/resume", h.Resume)
		r.Post("/view/clear", h.ClearView)
		r.Post("/view/scroll", h.ObserveScroll)
		r.Get("/view/window", h.Window)
		r.Post("/view/select", h.Select)
		r.Get("/view/selection/export", h.ExportSelection)

		r.Get("/instances", h.Instances)

		r.Get("/bookmarks", h.Bookmarks)
		r.Post("/bookmarks/toggle", h.ToggleBookmark)
		r.Post("/bookmarks/jump", h.JumpToBookmark)

		r.Get("/console/outputs", h.Outputs)
		r.Get("/console/outputs/{id}", h.OutputByID)
		r.Get("/console/tps", h.TPS)
		r.Get("/console/history", h.CommandHistory)
		r.With(router.chiMiddleware.RateLimitDispatch()).Post("/console/dispatch", h.Dispatch)

		r.With(router.chiMiddleware.RateLimitSearch()).Post("/history/search", h.HistorySearch)

		r.Get("/ws", h.WebSocket)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
