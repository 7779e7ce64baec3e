// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package models

import "time"

// Default values applied when a catalog or upstream record is missing a field.
// Every source (DuckDB catalog, TMDB responses) normalizes into the same Movie
// shape using these, so downstream rankers never see partial records.
const (
	DefaultRuntime     = 120
	DefaultReleaseDate = "2000-01-01"
	DefaultRating      = 0.0
	DefaultDescription = "No description available"

	// PlaceholderPosterURL is returned whenever a poster lookup fails.
	PlaceholderPosterURL = "https://via.placeholder.com/500x750?text=No+Poster"
)

// Movie is the normalized movie record shared by the catalog, the TMDB
// client and every ranker. ID is the TMDB movie id.
type Movie struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	GenreIDs    []int    `json:"genre_ids"`
	Runtime     int      `json:"runtime"`
	ReleaseDate string   `json:"release_date"`
	Rating      float64  `json:"rating"`
	Description string   `json:"description"`
	PosterURL   string   `json:"poster_url,omitempty"`
}

// Normalize fills zero-valued fields with the documented defaults.
// It returns the receiver by value so callers can chain it over fresh records.
func (m Movie) Normalize() Movie {
	if m.Runtime == 0 {
		m.Runtime = DefaultRuntime
	}
	if m.ReleaseDate == "" {
		m.ReleaseDate = DefaultReleaseDate
	}
	if m.Description == "" {
		m.Description = DefaultDescription
	}
	if m.GenreIDs == nil {
		m.GenreIDs = []int{}
	}
	return m
}

// Metadata is the genre/keyword feature set used for Jaccard similarity.
// Keywords are capped at the first five TMDB keyword ids.
type Metadata struct {
	GenreIDs   []int `json:"genre_ids"`
	KeywordIDs []int `json:"keyword_ids"`
}

// Empty reports whether both feature sets are empty.
func (md Metadata) Empty() bool {
	return len(md.GenreIDs) == 0 && len(md.KeywordIDs) == 0
}

// RatingEvent is one append-only rating record. Events are never updated in
// place; the latest event per (user, movie) pair is authoritative. Review is
// optional free-form text accompanying the rating.
type RatingEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id" validate:"required"`
	MovieID   int       `json:"movie_id" validate:"required,gt=0"`
	Rating    float64   `json:"rating" validate:"required,gte=1,lte=5"`
	Review    string    `json:"review,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// WatchlistItem is one saved entry on a user's watchlist. The title is
// stored alongside the id so the list renders even when the movie has left
// the catalog.
type WatchlistItem struct {
	MovieID int       `json:"movie_id" validate:"required,gt=0"`
	Title   string    `json:"title" validate:"required"`
	AddedAt time.Time `json:"added_at"`
}

// UserProfile aggregates a user's rating history.
type UserProfile struct {
	UserID             string         `json:"user_id"`
	TotalReviews       int            `json:"total_reviews"`
	AverageRating      float64        `json:"average_rating"`
	TopRated           []RatedMovie   `json:"top_rated"`
	RecentlyRated      []RatedMovie   `json:"recently_rated"`
	RatingDistribution map[int]int    `json:"rating_distribution"`
}

// RatedMovie pairs a movie with the user's rating of it.
type RatedMovie struct {
	Movie  Movie   `json:"movie"`
	Rating float64 `json:"rating"`
}

// MoodProfile carries the answers of the mood questionnaire. Empty fields
// take the documented defaults (neutral / medium / alone / medium).
type MoodProfile struct {
	Mood            string   `json:"mood" validate:"omitempty,oneof=happy sad excited relaxed scared romantic adventurous thoughtful neutral"`
	Energy          string   `json:"energy" validate:"omitempty,oneof=low medium high"`
	WatchingWith    string   `json:"watching_with" validate:"omitempty,oneof=alone partner family friends kids"`
	TimeAvailable   string   `json:"time_available" validate:"omitempty,oneof=short medium long"`
	GenrePreference string   `json:"genre_preference"`
	AvoidContent    []string `json:"avoid_content"`
}

// MoodResult is a mood recommendation: the movie plus whether it actually
// matched the resolved mood constraints or came from the popularity fallback.
type MoodResult struct {
	Movie       Movie `json:"movie"`
	MoodMatched bool  `json:"mood_matched"`
}
