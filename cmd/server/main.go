// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

// MovieMind is a hybrid movie recommendation service. It blends a
// precomputed content-similarity matrix, a collaborative affinity model
// over the rating history, TMDB metadata and a mood questionnaire into
// one HTTP API, degrading to popular titles whenever a signal source is
// unavailable.
//
// # Quick Start
//
//	TMDB_API_KEY=your-key moviemind
//
// Configuration is layered: built-in defaults, an optional config.yaml,
// then environment variables such as TMDB_API_KEY and HTTP_PORT (see
// internal/config for the full mapping).
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgraph-io/badger/v4"

	"github.com/moviemind/moviemind/internal/api"
	"github.com/moviemind/moviemind/internal/config"
	"github.com/moviemind/moviemind/internal/logging"
	"github.com/moviemind/moviemind/internal/metrics"
	"github.com/moviemind/moviemind/internal/recommend"
	"github.com/moviemind/moviemind/internal/store"
	"github.com/moviemind/moviemind/internal/supervisor"
	"github.com/moviemind/moviemind/internal/supervisor/services"
	"github.com/moviemind/moviemind/internal/tmdb"
)

// seedCatalogSize is how many popular movies bootstrap an empty catalog.
const seedCatalogSize = 100

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	metrics.SetAppInfo(version)

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("matrix_path", cfg.Data.MatrixPath).
		Bool("cache_enabled", cfg.Cache.Enabled).
		Msg("Starting MovieMind")

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	// Badger backs the TMDB response cache. Optional: a cold cache only
	// costs latency.
	var cacheDB *badger.DB
	if cfg.Cache.Enabled {
		opts := badger.DefaultOptions(cfg.Cache.Path).WithLogger(nil)
		cacheDB, err = badger.Open(opts)
		if err != nil {
			logging.Warn().Err(err).Msg("Failed to open cache, continuing without")
			cacheDB = nil
		} else {
			defer func() {
				if err := cacheDB.Close(); err != nil {
					logging.Error().Err(err).Msg("Error closing cache")
				}
			}()
		}
	}

	tmdbCfg := tmdb.DefaultConfig()
	tmdbCfg.APIKey = cfg.TMDB.APIKey
	tmdbCfg.BaseURL = cfg.TMDB.BaseURL
	tmdbCfg.Timeout = cfg.TMDB.Timeout
	tmdbCfg.RequestsPerSecond = cfg.TMDB.RequestsPerSecond
	tmdbCfg.Burst = cfg.TMDB.Burst
	tmdbClient := tmdb.NewClient(tmdbCfg, cacheDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	catalog, err := loadCatalog(ctx, db, tmdbClient)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load catalog")
	}
	logging.Info().Int("movies", catalog.Len()).Msg("Catalog loaded")

	matrix := loadMatrix(cfg.Data.MatrixPath, catalog.Len())
	model := loadModel(ctx, cfg, db)

	engine, err := recommend.NewEngine(recommend.Config{
		DefaultLimit:         cfg.Engine.DefaultLimit,
		MaxLimit:             cfg.Engine.MaxLimit,
		DefaultContentWeight: cfg.Engine.DefaultContentWeight,
		CandidateMultiplier:  cfg.Engine.CandidateMultiplier,
		MetadataWorkers:      cfg.Engine.MetadataWorkers,
		FallbackRating:       cfg.Engine.FallbackRating,
		CacheTTL:             cfg.Engine.CacheTTL,
	}, recommend.Dependencies{
		Catalog:    catalog,
		Matrix:     matrix,
		Model:      model,
		Metadata:   tmdbClient,
		Genres:     tmdbClient,
		GenreNames: tmdbClient,
		Popularity: tmdbClient,
		Ratings:    db,
		Posters:    tmdbClient,
		MoodConfig: recommend.DefaultMoodConfig(),
	}, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build recommendation engine")
	}

	handler := api.NewHandler(engine, db)
	middleware := api.NewMiddleware(api.MiddlewareConfig{
		CORSOrigins:     cfg.Server.CORSOrigins,
		RateLimitReqs:   cfg.Server.RateLimitReqs,
		RateLimitWindow: cfg.Server.RateLimitWindow,
	})
	router := api.NewRouter(handler, middleware).Setup()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)

	if cacheDB != nil {
		tree.AddDataService(services.NewCacheGCService(cacheDB, cfg.Cache.GCInterval))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("MovieMind stopped gracefully")
}

// loadCatalog reads the persisted catalog, seeding it from TMDB popular
// titles on first run.
func loadCatalog(ctx context.Context, db *store.Store, client *tmdb.Client) (*recommend.Catalog, error) {
	movies, err := db.LoadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		logging.Info().Msg("Catalog empty, seeding from TMDB popular titles")
		movies, err = client.GetPopular(ctx, seedCatalogSize)
		if err != nil {
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		if err := db.ReplaceCatalog(ctx, movies); err != nil {
			return nil, fmt.Errorf("persist seeded catalog: %w", err)
		}
	}
	return recommend.NewCatalog(movies), nil
}

// loadMatrix loads the similarity matrix, dropping it when missing or when
// its dimension disagrees with the catalog. The content ranker then fails
// closed and similarity requests degrade to popular titles.
func loadMatrix(path string, catalogSize int) *recommend.SimilarityMatrix {
	if path == "" {
		logging.Info().Msg("No similarity matrix configured, content ranker disabled")
		return nil
	}
	matrix, err := recommend.LoadSimilarityMatrix(path)
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Failed to load similarity matrix, content ranker disabled")
		return nil
	}
	if matrix.Len() != catalogSize {
		logging.Warn().
			Int("matrix", matrix.Len()).
			Int("catalog", catalogSize).
			Msg("Similarity matrix dimension mismatch, content ranker disabled")
		return nil
	}
	return matrix
}

// loadModel selects the affinity strategy: the trained factor model when its
// file loads, the mean-rating fallback otherwise.
func loadModel(ctx context.Context, cfg *config.Config, db *store.Store) recommend.AffinityModel {
	if cfg.Data.FactorModelPath != "" {
		model, err := recommend.LoadFactorModel(cfg.Data.FactorModelPath)
		if err == nil {
			logging.Info().Str("path", cfg.Data.FactorModelPath).Msg("Factor model loaded")
			return model
		}
		logging.Warn().Err(err).Msg("Failed to load factor model, falling back to mean ratings")
	}

	means, err := db.ItemMeans(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to load item means, using flat fallback rating")
		means = nil
	}
	return recommend.NewMeanRatingModel(means, cfg.Engine.FallbackRating)
}
