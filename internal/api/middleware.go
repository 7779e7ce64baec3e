// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/moviemind/moviemind/internal/logging"
	"github.com/moviemind/moviemind/internal/metrics"
	"github.com/moviemind/moviemind/internal/models"
)

// MiddlewareConfig holds the knobs for the shared middleware stack.
type MiddlewareConfig struct {
	CORSOrigins     []string
	RateLimitReqs   int // requests per window per client IP; 0 disables
	RateLimitWindow time.Duration
}

// Middleware bundles the configured middleware factories used by the router.
type Middleware struct {
	cfg  MiddlewareConfig
	cors func(http.Handler) http.Handler
}

// NewMiddleware builds the middleware factories from cfg.
func NewMiddleware(cfg MiddlewareConfig) *Middleware {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	})
	return &Middleware{cfg: cfg, cors: corsHandler}
}

// CORS returns the CORS middleware built from go-chi/cors.
func (m *Middleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns an IP-keyed rate limiter built from go-chi/httprate,
// answering over-limit requests with the standard error envelope.
func (m *Middleware) RateLimit() func(http.Handler) http.Handler {
	if m.cfg.RateLimitReqs <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		m.cfg.RateLimitReqs,
		m.cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many requests", nil)
		}),
	)
}

// RequestLogging logs every request on completion and feeds the API metrics.
// The metrics endpoint label is the Chi route pattern, not the raw path, so
// per-title requests do not explode the label cardinality.
func RequestLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			metrics.TrackActiveRequest(true)
			defer metrics.TrackActiveRequest(false)

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			pattern := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				pattern = rctx.RoutePattern()
			}
			duration := time.Since(start)
			metrics.RecordAPIRequest(r.Method, pattern, strconv.Itoa(ww.Status()), duration)

			logging.Info().
				Str("method", r.Method).
				Str("path", sanitizeLogValue(r.URL.Path)).
				Str("request_id", r.Header.Get("X-Request-ID")).
				Int("status", ww.Status()).
				Dur("duration", duration).
				Msg("request completed")
		})
	}
}

// okMeta is the metadata block for a successful, freshly computed response.
func okMeta(start time.Time, cached bool) models.RespMeta {
	meta := models.RespMeta{Timestamp: time.Now(), Cached: cached}
	if !cached {
		meta.QueryTimeMS = time.Since(start).Milliseconds()
	}
	return meta
}
