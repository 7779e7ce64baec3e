// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

// Package config defines the MovieMind configuration model and its layered
// loader. Settings come from built-in defaults, then an optional YAML file,
// then environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the root configuration for the MovieMind service.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Cache    CacheConfig    `koanf:"cache"`
	TMDB     TMDBConfig     `koanf:"tmdb"`
	Engine   EngineConfig   `koanf:"engine"`
	Data     DataConfig     `koanf:"data"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig controls the HTTP listener and its middleware.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`          // read/write timeout for the HTTP server
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"` // grace period on SIGTERM
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"` // requests per window per client IP; 0 disables
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// DatabaseConfig controls the DuckDB store holding the catalog and ratings.
type DatabaseConfig struct {
	Path string `koanf:"path"` // empty opens an in-memory database
}

// CacheConfig controls the BadgerDB cache shared by the TMDB client.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Path       string        `koanf:"path"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// TMDBConfig controls the TMDB API collaborator.
type TMDBConfig struct {
	APIKey            string        `koanf:"api_key"`
	BaseURL           string        `koanf:"base_url"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
}

// EngineConfig controls the recommendation engine itself.
type EngineConfig struct {
	DefaultLimit         int           `koanf:"default_limit"`
	MaxLimit             int           `koanf:"max_limit"`
	DefaultContentWeight float64       `koanf:"default_content_weight"`
	CandidateMultiplier  int           `koanf:"candidate_multiplier"`
	MetadataWorkers      int           `koanf:"metadata_workers"`
	FallbackRating       float64       `koanf:"fallback_rating"`
	CacheTTL             time.Duration `koanf:"cache_ttl"`
}

// DataConfig points at the precomputed model artifacts loaded on startup.
type DataConfig struct {
	MatrixPath      string `koanf:"matrix_path"`       // similarity matrix JSON; empty disables the content ranker
	FactorModelPath string `koanf:"factor_model_path"` // factorization model JSON; empty falls back to item means
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // "json" or "console"
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all defaults applied. The defaults
// describe a standalone deployment: in-memory cache disabled, local DuckDB
// file, TMDB key supplied via environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Database: DatabaseConfig{
			Path: "/data/moviemind.duckdb",
		},
		Cache: CacheConfig{
			Enabled:    true,
			Path:       "/data/cache",
			GCInterval: 10 * time.Minute,
		},
		TMDB: TMDBConfig{
			APIKey:            "",
			BaseURL:           "https://api.themoviedb.org/3",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 4,
			Burst:             8,
		},
		Engine: EngineConfig{
			DefaultLimit:         5,
			MaxLimit:             20,
			DefaultContentWeight: 0.6,
			CandidateMultiplier:  2,
			MetadataWorkers:      8,
			FallbackRating:       3.5,
			CacheTTL:             5 * time.Minute,
		},
		Data: DataConfig{
			MatrixPath:      "/data/similarity_matrix.json",
			FactorModelPath: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks that required configuration is present and consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.Server.Timeout)
	}
	if c.Server.RateLimitReqs < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must not be negative, got %d", c.Server.RateLimitReqs)
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is required")
	}
	if err := validateHTTPURL(c.TMDB.BaseURL, "TMDB_BASE_URL"); err != nil {
		return err
	}
	if c.TMDB.RequestsPerSecond <= 0 {
		return fmt.Errorf("TMDB_REQUESTS_PER_SECOND must be positive, got %v", c.TMDB.RequestsPerSecond)
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.DefaultLimit < 1 {
		return fmt.Errorf("ENGINE_DEFAULT_LIMIT must be at least 1, got %d", c.Engine.DefaultLimit)
	}
	if c.Engine.MaxLimit < c.Engine.DefaultLimit {
		return fmt.Errorf("ENGINE_MAX_LIMIT (%d) must not be below ENGINE_DEFAULT_LIMIT (%d)",
			c.Engine.MaxLimit, c.Engine.DefaultLimit)
	}
	if c.Engine.DefaultContentWeight < 0 || c.Engine.DefaultContentWeight > 1 {
		return fmt.Errorf("ENGINE_DEFAULT_CONTENT_WEIGHT must be within [0,1], got %v", c.Engine.DefaultContentWeight)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal; got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateHTTPURL checks that the value parses as an absolute http(s) URL.
func validateHTTPURL(raw, name string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing a host: %q", name, raw)
	}
	return nil
}
