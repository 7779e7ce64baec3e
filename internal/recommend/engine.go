// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/moviemind/moviemind/internal/metrics"
	"github.com/moviemind/moviemind/internal/models"
)

// Dependencies bundles the collaborators and loaded artifacts an Engine is
// built from. Matrix and Model may be nil: the content ranker then fails
// closed and the affinity predictor must be given a MeanRatingModel by the
// caller instead.
type Dependencies struct {
	Catalog    *Catalog
	Matrix     *SimilarityMatrix
	Model      AffinityModel
	Metadata   MetadataLookup
	Genres     GenreCatalog
	GenreNames GenreLister
	Popularity PopularitySource
	Ratings    RatingStore
	Posters    PosterProvider
	MoodConfig MoodConfig
}

// Engine orchestrates the rankers behind the public operations, applying
// request defaults, the response cache, logging and metrics. Ranker and
// collaborator failures degrade through the fallback chain; the only
// terminal "error" state a client observes is an empty list.
type Engine struct {
	cfg      Config
	catalog  *Catalog
	content  *ContentRanker
	metadata *MetadataRanker
	affinity *AffinityPredictor
	hybrid   *HybridBlender
	mood     *MoodFilter
	fallback *FallbackChain
	posters  PosterProvider
	cache    *responseCache
	log      zerolog.Logger
}

// NewEngine wires the rankers from cfg and deps.
func NewEngine(cfg Config, deps Dependencies, log zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if deps.Catalog == nil {
		return nil, errors.New("engine: catalog is required")
	}
	if deps.Model == nil {
		return nil, errors.New("engine: affinity model is required")
	}

	engineLog := log.With().Str("component", "recommend").Logger()
	fallback := NewFallbackChain(deps.Popularity, engineLog)
	content := NewContentRanker(deps.Catalog, deps.Matrix)
	affinity := NewAffinityPredictor(deps.Catalog, deps.Model, deps.Ratings)

	e := &Engine{
		cfg:      cfg,
		catalog:  deps.Catalog,
		content:  content,
		metadata: NewMetadataRanker(deps.Catalog, deps.Metadata, cfg.MetadataWorkers),
		affinity: affinity,
		hybrid:   NewHybridBlender(deps.Catalog, content, affinity, fallback, cfg),
		mood:     NewMoodFilter(deps.Genres, deps.GenreNames, fallback, deps.MoodConfig, engineLog),
		fallback: fallback,
		posters:  deps.Posters,
		cache:    newResponseCache(cfg.CacheTTL),
		log:      engineLog,
	}

	e.log.Info().
		Int("catalog_size", deps.Catalog.Len()).
		Bool("content_available", content.Available()).
		Str("affinity_model", deps.Model.Name()).
		Msg("recommendation engine ready")
	return e, nil
}

// Catalog exposes the underlying catalog for host lookups.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Similar returns the k items most content-similar to title. When the
// content ranker is unavailable the result degrades to popular items.
// Returns ErrNotFound for a title absent from the catalog.
func (e *Engine) Similar(ctx context.Context, title string, k int) ([]models.Movie, bool, error) {
	k = e.cfg.clampLimit(k)
	start := time.Now()
	key := fmt.Sprintf("similar:%s:%d", title, k)
	if movies, ok := e.cache.get(key); ok {
		return movies, true, nil
	}

	movies, err := e.content.Rank(title, k)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, false, err
	case err != nil:
		metrics.RecordRankerError("content")
		metrics.RecordEngineFallback("similar", "ranker_unavailable")
		e.log.Warn().Err(err).Str("title", title).Msg("content ranker unavailable, serving popular")
		movies = e.fallback.Popular(ctx, k)
	}

	movies = e.decorate(ctx, movies)
	e.cache.set(key, movies)
	metrics.RecordEngineOperation("similar", time.Since(start), len(movies))
	return movies, false, nil
}

// Discover returns the k items most metadata-similar (Jaccard over
// genres+keywords) to title. Returns ErrNotFound for an unknown title.
func (e *Engine) Discover(ctx context.Context, title string, k int) ([]models.Movie, bool, error) {
	k = e.cfg.clampLimit(k)
	start := time.Now()
	key := fmt.Sprintf("discover:%s:%d", title, k)
	if movies, ok := e.cache.get(key); ok {
		return movies, true, nil
	}

	movies, err := e.metadata.Rank(ctx, title, k)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, err
		}
		metrics.RecordRankerError("metadata")
		metrics.RecordEngineFallback("discover", "collaborator")
		movies = e.fallback.Popular(ctx, k)
	}

	movies = e.decorate(ctx, movies)
	e.cache.set(key, movies)
	metrics.RecordEngineOperation("discover", time.Since(start), len(movies))
	return movies, false, nil
}

// ForUser returns the k unrated items with the highest predicted affinity
// for userID. An unknown user gets the model's default ranking.
func (e *Engine) ForUser(ctx context.Context, userID string, k int) ([]models.Movie, bool, error) {
	k = e.cfg.clampLimit(k)
	start := time.Now()
	key := fmt.Sprintf("user:%s:%d", userID, k)
	if movies, ok := e.cache.get(key); ok {
		return movies, true, nil
	}

	movies, err := e.affinity.RankUnseen(ctx, userID, k)
	if err != nil {
		metrics.RecordRankerError("affinity")
		metrics.RecordEngineFallback("for_user", "collaborator")
		movies = e.fallback.Popular(ctx, k)
	}

	movies = e.decorate(ctx, movies)
	e.cache.set(key, movies)
	metrics.RecordEngineOperation("for_user", time.Since(start), len(movies))
	return movies, false, nil
}

// Hybrid blends content similarity to title with affinity for userID.
// A negative contentWeight takes the configured default; an explicit 0 is
// meaningful (collaborative ordering only). Never fails: at worst the
// result is the popular fallback, or empty.
func (e *Engine) Hybrid(ctx context.Context, title, userID string, k int, contentWeight float64) ([]models.Movie, bool) {
	k = e.cfg.clampLimit(k)
	if contentWeight < 0 {
		contentWeight = e.cfg.DefaultContentWeight
	}
	start := time.Now()
	key := fmt.Sprintf("hybrid:%s:%s:%d:%.3f", title, userID, k, contentWeight)
	if movies, ok := e.cache.get(key); ok {
		return movies, true
	}

	movies := e.hybrid.Rank(ctx, title, userID, k, contentWeight)
	movies = e.decorate(ctx, movies)
	e.cache.set(key, movies)
	metrics.RecordEngineOperation("hybrid", time.Since(start), len(movies))
	return movies, false
}

// ByMood resolves the mood questionnaire into up to k recommendations.
// Never cached: the fallback path is allowed to vary between runs.
func (e *Engine) ByMood(ctx context.Context, profile models.MoodProfile, k int) []models.MoodResult {
	k = e.cfg.clampLimit(k)
	start := time.Now()

	results := e.mood.Recommend(ctx, profile, k)
	matched := 0
	for i := range results {
		results[i].Movie = e.decorateOne(ctx, results[i].Movie)
		if results[i].MoodMatched {
			matched++
		}
	}
	if matched == 0 && len(results) > 0 {
		metrics.RecordEngineFallback("mood", "empty")
	}
	metrics.RecordEngineOperation("mood", time.Since(start), len(results))
	return results
}

// Popular returns the best-effort popular list.
func (e *Engine) Popular(ctx context.Context, k int) ([]models.Movie, bool) {
	k = e.cfg.clampLimit(k)
	start := time.Now()
	key := fmt.Sprintf("popular:%d", k)
	if movies, ok := e.cache.get(key); ok {
		return movies, true
	}

	movies := e.decorate(ctx, e.fallback.Popular(ctx, k))
	e.cache.set(key, movies)
	metrics.RecordEngineOperation("popular", time.Since(start), len(movies))
	return movies, false
}

// decorate fills missing poster URLs. Presentational only; lookup failures
// leave the placeholder the provider returns.
func (e *Engine) decorate(ctx context.Context, movies []models.Movie) []models.Movie {
	for i := range movies {
		movies[i] = e.decorateOne(ctx, movies[i])
	}
	return movies
}

func (e *Engine) decorateOne(ctx context.Context, m models.Movie) models.Movie {
	if e.posters != nil && m.PosterURL == "" {
		m.PosterURL = e.posters.GetPoster(ctx, m.ID)
	}
	return m
}
