// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

// Package store provides DuckDB-backed persistence: the movie catalog in
// similarity-matrix row order and the append-only rating history. It
// implements the engine's CatalogSource and RatingStore contracts and the
// user-profile aggregation the API serves.
package store
