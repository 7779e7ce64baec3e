// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

// Package api provides the HTTP surface of the recommendation service,
// built on the Chi router with CORS, per-IP rate limiting, request logging
// and Prometheus metrics. All endpoints answer with the APIResponse
// envelope; recommendation failures degrade to popular fallbacks inside
// the engine, so the only hard API errors are validation, unknown titles
// and storage failures.
package api
