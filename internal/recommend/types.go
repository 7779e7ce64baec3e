// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package recommend

import (
	"context"

	"github.com/moviemind/moviemind/internal/models"
)

// Collaborator contracts. The engine consumes these interfaces and never
// depends on a concrete host implementation; internal/tmdb and
// internal/store satisfy them in production, hand-rolled mocks in tests.
//
// Every collaborator may fail. The engine treats each failure as "zero
// candidates from this source", never as a fatal error.

// CatalogSource provides the full movie set backing the in-memory catalog.
type CatalogSource interface {
	// LoadCatalog returns every movie in similarity-matrix row order.
	// Records are expected to be normalized (models.Movie.Normalize).
	LoadCatalog(ctx context.Context) ([]models.Movie, error)
}

// MetadataLookup fetches the genre/keyword feature sets for one movie.
type MetadataLookup interface {
	// GetMetadata returns the metadata for movieID. An unavailable or
	// unknown movie yields empty sets, not an error surface the ranker
	// has to special-case.
	GetMetadata(ctx context.Context, movieID int) (models.Metadata, error)
}

// GenreCatalog fetches candidate movies for a single genre.
type GenreCatalog interface {
	GetByGenre(ctx context.Context, genreID, limit int) ([]models.Movie, error)
}

// PopularitySource fetches a best-effort popular list.
type PopularitySource interface {
	GetPopular(ctx context.Context, limit int) ([]models.Movie, error)
}

// RatingStore is the slice of the rating history the engine needs.
type RatingStore interface {
	// RatedIDs returns the distinct movie ids the user has ever rated.
	// Unknown user returns an empty slice, not an error.
	RatedIDs(ctx context.Context, userID string) ([]int, error)

	// ItemMeans returns the mean rating per movie id over all history.
	ItemMeans(ctx context.Context) (map[int]float64, error)
}

// PosterProvider resolves a poster URL for a movie. Purely presentational;
// implementations return models.PlaceholderPosterURL on any failure.
type PosterProvider interface {
	GetPoster(ctx context.Context, movieID int) string
}

// AffinityModel predicts a user-item affinity score on the rating scale
// [1,5]. It is a strategy selected once at engine construction: a trained
// factor model when a model file is available, the mean-rating fallback
// otherwise.
type AffinityModel interface {
	Predict(userID string, movieID int) (float64, error)

	// Name identifies the strategy in logs and metrics.
	Name() string
}
