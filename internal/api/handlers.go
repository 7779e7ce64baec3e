// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/moviemind/moviemind/internal/models"
	"github.com/moviemind/moviemind/internal/recommend"
)

// handlerTimeout bounds every recommendation request, covering the slow path
// where the metadata ranker fans out to TMDB per catalog entry.
const handlerTimeout = 30 * time.Second

// ProfileStore is the slice of the persistence layer the rating, profile,
// history and watchlist endpoints need.
type ProfileStore interface {
	AppendRating(ctx context.Context, event models.RatingEvent) (models.RatingEvent, error)
	UserProfile(ctx context.Context, userID string) (models.UserProfile, error)
	UserRatings(ctx context.Context, userID string) ([]models.RatingEvent, error)
	Watchlist(ctx context.Context, userID string) ([]models.WatchlistItem, error)
	AddToWatchlist(ctx context.Context, userID string, item models.WatchlistItem) (models.WatchlistItem, error)
	RemoveFromWatchlist(ctx context.Context, userID string, movieID int) error
}

// Handler serves the public recommendation API.
type Handler struct {
	engine *recommend.Engine
	store  ProfileStore
}

// NewHandler creates a Handler around the engine and the profile store.
func NewHandler(engine *recommend.Engine, store ProfileStore) *Handler {
	return &Handler{engine: engine, store: store}
}

// titleParam extracts and unescapes the {title} path parameter.
func titleParam(r *http.Request) string {
	raw := chi.URLParam(r, "title")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// respondMovies writes the standard success envelope around a movie list.
func respondMovies(w http.ResponseWriter, movies []models.Movie, cached bool, start time.Time) {
	if movies == nil {
		movies = []models.Movie{}
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"movies": movies,
			"count":  len(movies),
		},
		Metadata: okMeta(start, cached),
	})
}

// Similar handles GET /api/v1/recommendations/similar/{title}.
// Returns movies content-similar to the given title.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	title := titleParam(r)
	k := getIntParam(r, "k", 0)

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	movies, cached, err := h.engine.Similar(ctx, title, k)
	if err != nil {
		if errors.Is(err, recommend.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Movie not found in catalog", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute recommendations", err)
		return
	}
	respondMovies(w, movies, cached, start)
}

// Discover handles GET /api/v1/recommendations/discover/{title}.
// Returns movies sharing genres and keywords with the given title.
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	title := titleParam(r)
	k := getIntParam(r, "k", 0)

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	movies, cached, err := h.engine.Discover(ctx, title, k)
	if err != nil {
		if errors.Is(err, recommend.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Movie not found in catalog", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute recommendations", err)
		return
	}
	respondMovies(w, movies, cached, start)
}

// ForUser handles GET /api/v1/recommendations/user/{userID}.
// Returns personalized recommendations excluding everything already rated.
func (h *Handler) ForUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user id is required", nil)
		return
	}
	k := getIntParam(r, "k", 0)

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	movies, cached, err := h.engine.ForUser(ctx, userID, k)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute recommendations", err)
		return
	}
	respondMovies(w, movies, cached, start)
}

// Hybrid handles GET /api/v1/recommendations/hybrid/{title}.
// Optional query parameters: user_id, content_weight (0..1), k.
func (h *Handler) Hybrid(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	title := titleParam(r)
	userID := r.URL.Query().Get("user_id")
	k := getIntParam(r, "k", 0)

	// -1 means "not supplied"; an explicit 0 keeps its collaborative-only
	// meaning all the way down.
	weight := getFloatParam(r, "content_weight", -1)
	if weight > 1 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "content_weight must be within [0,1]", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	movies, cached := h.engine.Hybrid(ctx, title, userID, k, weight)
	respondMovies(w, movies, cached, start)
}

// Popular handles GET /api/v1/recommendations/popular.
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	k := getIntParam(r, "k", 0)

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	movies, cached := h.engine.Popular(ctx, k)
	respondMovies(w, movies, cached, start)
}

// moodRequest is the POST body of the mood endpoint: the questionnaire plus
// an optional result limit.
type moodRequest struct {
	models.MoodProfile
	Limit int `json:"limit" validate:"omitempty,gte=1"`
}

// ByMood handles POST /api/v1/recommendations/mood.
// The body carries the mood questionnaire; results flag whether each movie
// actually matched the mood constraints or came from the popular fallback.
func (h *Handler) ByMood(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req moodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	results := h.engine.ByMood(ctx, req.MoodProfile, req.Limit)
	if results == nil {
		results = []models.MoodResult{}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"results": results,
			"count":   len(results),
		},
		Metadata: okMeta(start, false),
	})
}

// CreateRating handles POST /api/v1/ratings.
// Appends a rating event; ratings are never updated in place.
func (h *Handler) CreateRating(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var event models.RatingEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&event); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	stored, err := h.store.AppendRating(ctx, event)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store rating", err)
		return
	}

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status:   "success",
		Data:     stored,
		Metadata: okMeta(start, false),
	})
}

// UserProfile handles GET /api/v1/users/{userID}/profile.
func (h *Handler) UserProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user id is required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	profile, err := h.store.UserProfile(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load profile", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     profile,
		Metadata: okMeta(start, false),
	})
}

// UserHistory handles GET /api/v1/users/{userID}/history.
// Returns the full rating event stream, newest first, superseded events
// included.
func (h *Handler) UserHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user id is required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	events, err := h.store.UserRatings(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load history", err)
		return
	}
	if events == nil {
		events = []models.RatingEvent{}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"events": events,
			"count":  len(events),
		},
		Metadata: okMeta(start, false),
	})
}

// Watchlist handles GET /api/v1/users/{userID}/watchlist.
func (h *Handler) Watchlist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user id is required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	items, err := h.store.Watchlist(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load watchlist", err)
		return
	}
	if items == nil {
		items = []models.WatchlistItem{}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"items": items,
			"count": len(items),
		},
		Metadata: okMeta(start, false),
	})
}

// AddToWatchlist handles POST /api/v1/users/{userID}/watchlist.
// Re-adding a movie already on the list refreshes it instead of duplicating.
func (h *Handler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user id is required", nil)
		return
	}

	var item models.WatchlistItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", err)
		return
	}
	if apiErr := validateRequest(&item); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	stored, err := h.store.AddToWatchlist(ctx, userID, item)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store watchlist entry", err)
		return
	}

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status:   "success",
		Data:     stored,
		Metadata: okMeta(start, false),
	})
}

// RemoveFromWatchlist handles DELETE /api/v1/users/{userID}/watchlist/{movieID}.
// Removal is idempotent: deleting an absent entry still succeeds.
func (h *Handler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user id is required", nil)
		return
	}
	movieID, err := strconv.Atoi(chi.URLParam(r, "movieID"))
	if err != nil || movieID <= 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "movie id must be a positive integer", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	if err := h.store.RemoveFromWatchlist(ctx, userID, movieID); err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove watchlist entry", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]interface{}{"movie_id": movieID},
		Metadata: okMeta(start, false),
	})
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"status":       "healthy",
			"catalog_size": h.engine.Catalog().Len(),
		},
		Metadata: models.RespMeta{Timestamp: time.Now()},
	})
}
