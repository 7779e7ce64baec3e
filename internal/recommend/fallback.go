// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package recommend

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/moviemind/moviemind/internal/models"
)

// FallbackChain is the terminal degradation step shared by every ranker
// path: a best-effort popular list. When the popularity source itself is
// unreachable the chain returns an empty list, which every caller treats as
// valid final output. The uniform empty result is the only user-visible
// "error" the engine produces.
type FallbackChain struct {
	popularity PopularitySource
	log        zerolog.Logger
}

// NewFallbackChain builds the chain over a popularity source.
func NewFallbackChain(popularity PopularitySource, log zerolog.Logger) *FallbackChain {
	return &FallbackChain{popularity: popularity, log: log}
}

// Popular returns up to k popular movies, or an empty slice when the source
// fails. Never returns an error.
func (f *FallbackChain) Popular(ctx context.Context, k int) []models.Movie {
	if f.popularity == nil || k <= 0 {
		return []models.Movie{}
	}
	movies, err := f.popularity.GetPopular(ctx, k)
	if err != nil {
		f.log.Warn().Err(&CollaboratorError{Op: "popular", Err: err}).
			Msg("popularity source failed, serving empty list")
		return []models.Movie{}
	}
	if len(movies) > k {
		movies = movies[:k]
	}
	out := make([]models.Movie, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.Normalize())
	}
	return out
}
