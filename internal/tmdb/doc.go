// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

// Package tmdb implements the TMDB v3 API collaborator behind the engine's
// metadata, genre, popularity and poster contracts.
//
// Every upstream call passes through a token-bucket rate limiter and a
// circuit breaker, and raw response bodies are cached in BadgerDB with
// per-endpoint TTLs. Failures surface as errors to the engine, which
// uniformly treats them as zero candidates from this source.
package tmdb
