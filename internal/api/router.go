// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router assembles the HTTP surface from the handler and middleware stack.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates a Router.
func NewRouter(handler *Handler, middleware *Middleware) *Router {
	return &Router{handler: handler, middleware: middleware}
}

// Setup configures all routes and returns the root handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogging())
	r.Use(router.middleware.CORS())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())

		r.Get("/health", router.handler.Health)

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/popular", router.handler.Popular)
			r.Get("/similar/{title}", router.handler.Similar)
			r.Get("/discover/{title}", router.handler.Discover)
			r.Get("/user/{userID}", router.handler.ForUser)
			r.Get("/hybrid/{title}", router.handler.Hybrid)
			r.Post("/mood", router.handler.ByMood)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/{userID}/profile", router.handler.UserProfile)
			r.Get("/{userID}/history", router.handler.UserHistory)
			r.Get("/{userID}/watchlist", router.handler.Watchlist)
			r.Post("/{userID}/watchlist", router.handler.AddToWatchlist)
			r.Delete("/{userID}/watchlist/{movieID}", router.handler.RemoveFromWatchlist)
		})

		r.Post("/ratings", router.handler.CreateRating)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
