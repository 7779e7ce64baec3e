// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/moviemind/moviemind/internal/logging"
	"github.com/moviemind/moviemind/internal/metrics"
	"github.com/moviemind/moviemind/internal/models"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	imageBaseURL   = "https://image.tmdb.org/t/p/w500"

	// maxKeywords caps the keyword feature set per movie.
	maxKeywords = 5
)

// Config holds TMDB client configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// RequestsPerSecond and Burst bound the upstream request rate.
	RequestsPerSecond float64
	Burst             int

	// Response cache TTLs per endpoint family.
	PopularTTL  time.Duration
	GenresTTL   time.Duration
	DiscoverTTL time.Duration
	MetadataTTL time.Duration
	DetailsTTL  time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:           defaultBaseURL,
		Timeout:           10 * time.Second,
		RequestsPerSecond: 4,
		Burst:             8,
		PopularTTL:        time.Hour,
		GenresTTL:         time.Hour,
		DiscoverTTL:       30 * time.Minute,
		MetadataTTL:       30 * time.Minute,
		DetailsTTL:        time.Hour,
	}
}

// Client is the TMDB v3 API client. It implements the engine's
// MetadataLookup, GenreCatalog, PopularitySource, GenreLister and
// PosterProvider contracts behind a rate limiter, a circuit breaker and a
// BadgerDB response cache.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]byte]
	cache   *responseCache
}

// NewClient builds a client. db may be nil to disable the response cache.
//
// Circuit breaker configuration mirrors the rest of the service:
// max 3 half-open requests, 1 minute measurement window, 2 minute recovery
// timeout, opens at >= 60% failures over at least 10 requests.
func NewClient(cfg Config, db *badger.DB) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 4
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 8
	}

	cbName := "tmdb-api"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().
				Str("breaker", name).
				Str("from", fromStr).
				Str("to", toStr).
				Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		cb:      cb,
		cache:   newResponseCache(db),
	}
}

// get fetches path with the given query, serving from the cache when
// possible and recording metrics under label.
func (c *Client) get(ctx context.Context, label, path string, query url.Values, ttl time.Duration) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	cacheKey := label + ":" + path + "?" + query.Encode()
	if body, ok := c.cache.get(cacheKey); ok {
		return body, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.TMDBRequestErrors.WithLabelValues(label, "rate_limit").Inc()
		return nil, fmt.Errorf("tmdb: rate limiter: %w", err)
	}

	start := time.Now()
	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.doRequest(ctx, path, query)
	})
	if err != nil {
		errType := "http"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			errType = "breaker_open"
			metrics.CircuitBreakerRequests.WithLabelValues("tmdb-api", "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues("tmdb-api", "failure").Inc()
		}
		metrics.RecordTMDBRequest(label, time.Since(start), errType)
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues("tmdb-api", "success").Inc()
	metrics.RecordTMDBRequest(label, time.Since(start), "")

	c.cache.set(cacheKey, body, ttl)
	return body, nil
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	query.Set("api_key", c.cfg.APIKey)
	reqURL := c.cfg.BaseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("tmdb: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb: %s: unexpected status %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tmdb: read body: %w", err)
	}
	return body, nil
}

// GetPopular implements recommend.PopularitySource.
func (c *Client) GetPopular(ctx context.Context, limit int) ([]models.Movie, error) {
	body, err := c.get(ctx, "popular", "/movie/popular", nil, c.cfg.PopularTTL)
	if err != nil {
		return nil, err
	}
	var list movieListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		metrics.TMDBRequestErrors.WithLabelValues("popular", "decode").Inc()
		return nil, fmt.Errorf("tmdb: decode popular: %w", err)
	}
	return resultsToMovies(list.Results, limit), nil
}

// GetByGenre implements recommend.GenreCatalog, returning the most popular
// movies carrying the genre.
func (c *Client) GetByGenre(ctx context.Context, genreID, limit int) ([]models.Movie, error) {
	query := url.Values{}
	query.Set("with_genres", strconv.Itoa(genreID))
	query.Set("sort_by", "popularity.desc")

	body, err := c.get(ctx, "discover", "/discover/movie", query, c.cfg.DiscoverTTL)
	if err != nil {
		return nil, err
	}
	var list movieListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		metrics.TMDBRequestErrors.WithLabelValues("discover", "decode").Inc()
		return nil, fmt.Errorf("tmdb: decode discover: %w", err)
	}
	return resultsToMovies(list.Results, limit), nil
}

// ListGenres implements recommend.GenreLister, mapping lowercase genre
// names to ids.
func (c *Client) ListGenres(ctx context.Context) (map[string]int, error) {
	body, err := c.get(ctx, "genres", "/genre/movie/list", nil, c.cfg.GenresTTL)
	if err != nil {
		return nil, err
	}
	var list genreListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		metrics.TMDBRequestErrors.WithLabelValues("genres", "decode").Inc()
		return nil, fmt.Errorf("tmdb: decode genres: %w", err)
	}
	table := make(map[string]int, len(list.Genres))
	for _, g := range list.Genres {
		table[strings.ToLower(g.Name)] = g.ID
	}
	return table, nil
}

// GetMetadata implements recommend.MetadataLookup: genre ids from the movie
// details plus the first five keyword ids.
func (c *Client) GetMetadata(ctx context.Context, movieID int) (models.Metadata, error) {
	details, err := c.details(ctx, movieID)
	if err != nil {
		return models.Metadata{}, err
	}
	md := models.Metadata{
		GenreIDs:   make([]int, 0, len(details.Genres)),
		KeywordIDs: []int{},
	}
	for _, g := range details.Genres {
		md.GenreIDs = append(md.GenreIDs, g.ID)
	}

	// Keywords are additive; a failed keywords call still yields genres.
	body, err := c.get(ctx, "keywords", fmt.Sprintf("/movie/%d/keywords", movieID), nil, c.cfg.MetadataTTL)
	if err == nil {
		var kw keywordsResponse
		if err := json.Unmarshal(body, &kw); err == nil {
			for i, k := range kw.Keywords {
				if i == maxKeywords {
					break
				}
				md.KeywordIDs = append(md.KeywordIDs, k.ID)
			}
		}
	}
	return md, nil
}

// GetDetails fetches the full record for one movie.
func (c *Client) GetDetails(ctx context.Context, movieID int) (models.Movie, error) {
	details, err := c.details(ctx, movieID)
	if err != nil {
		return models.Movie{}, err
	}
	genreIDs := make([]int, 0, len(details.Genres))
	for _, g := range details.Genres {
		genreIDs = append(genreIDs, g.ID)
	}
	m := models.Movie{
		ID:          details.ID,
		Title:       details.Title,
		GenreIDs:    genreIDs,
		Runtime:     details.Runtime,
		ReleaseDate: details.ReleaseDate,
		Rating:      details.VoteAverage,
		Description: details.Overview,
	}.Normalize()
	if details.PosterPath != "" {
		m.PosterURL = imageBaseURL + details.PosterPath
	}
	return m, nil
}

// GetPoster implements recommend.PosterProvider. Purely presentational:
// any failure yields the placeholder URL.
func (c *Client) GetPoster(ctx context.Context, movieID int) string {
	details, err := c.details(ctx, movieID)
	if err != nil || details.PosterPath == "" {
		return models.PlaceholderPosterURL
	}
	return imageBaseURL + details.PosterPath
}

func (c *Client) details(ctx context.Context, movieID int) (movieDetailsResponse, error) {
	body, err := c.get(ctx, "details", fmt.Sprintf("/movie/%d", movieID), nil, c.cfg.DetailsTTL)
	if err != nil {
		return movieDetailsResponse{}, err
	}
	var details movieDetailsResponse
	if err := json.Unmarshal(body, &details); err != nil {
		metrics.TMDBRequestErrors.WithLabelValues("details", "decode").Inc()
		return movieDetailsResponse{}, fmt.Errorf("tmdb: decode details: %w", err)
	}
	return details, nil
}

func resultsToMovies(results []movieResult, limit int) []models.Movie {
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	movies := make([]models.Movie, 0, len(results))
	for _, r := range results {
		movies = append(movies, r.toMovie())
	}
	return movies
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
