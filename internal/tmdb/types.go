// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package tmdb

import (
	"github.com/moviemind/moviemind/internal/models"
)

// Wire shapes for the TMDB v3 API. Only the fields MovieMind consumes are
// declared; the decoder drops the rest.

type movieResult struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	GenreIDs    []int   `json:"genre_ids"`
	Runtime     int     `json:"runtime"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
}

type movieListResponse struct {
	Results []movieResult `json:"results"`
}

type movieDetailsResponse struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Genres      []genre `json:"genres"`
	Runtime     int     `json:"runtime"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
}

type genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type genreListResponse struct {
	Genres []genre `json:"genres"`
}

type keyword struct {
	ID int `json:"id"`
}

type keywordsResponse struct {
	Keywords []keyword `json:"keywords"`
}

// toMovie normalizes a list result into the shared shape. List endpoints
// omit runtime, so most results carry the documented default.
func (r movieResult) toMovie() models.Movie {
	return models.Movie{
		ID:          r.ID,
		Title:       r.Title,
		GenreIDs:    r.GenreIDs,
		Runtime:     r.Runtime,
		ReleaseDate: r.ReleaseDate,
		Rating:      r.VoteAverage,
		Description: r.Overview,
	}.Normalize()
}
