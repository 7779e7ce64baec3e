// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package recommend

import (
	"fmt"
	"time"
)

// Config controls engine-wide request defaults and tuning knobs.
type Config struct {
	// DefaultLimit is the result count applied when a request omits k.
	DefaultLimit int

	// MaxLimit caps k; larger requests are clamped, not rejected.
	MaxLimit int

	// DefaultContentWeight is the hybrid content weight when unspecified.
	DefaultContentWeight float64

	// CandidateMultiplier scales k for the per-source candidate pools the
	// hybrid blender draws from before fusion.
	CandidateMultiplier int

	// MetadataWorkers bounds the metadata ranker's lookup fan-out.
	MetadataWorkers int

	// FallbackRating is the predicted score for items with no rating
	// history under the mean-rating model.
	FallbackRating float64

	// CacheTTL is the response cache lifetime. Zero disables caching.
	CacheTTL time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		DefaultLimit:         5,
		MaxLimit:             20,
		DefaultContentWeight: 0.6,
		CandidateMultiplier:  2,
		MetadataWorkers:      8,
		FallbackRating:       3.5,
		CacheTTL:             5 * time.Minute,
	}
}

// Validate checks the configuration for internally consistent values.
func (c Config) Validate() error {
	if c.DefaultLimit < 1 {
		return fmt.Errorf("default limit must be >= 1, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max limit %d below default limit %d", c.MaxLimit, c.DefaultLimit)
	}
	if c.DefaultContentWeight < 0 || c.DefaultContentWeight > 1 {
		return fmt.Errorf("content weight must be in [0,1], got %f", c.DefaultContentWeight)
	}
	if c.CandidateMultiplier < 1 {
		return fmt.Errorf("candidate multiplier must be >= 1, got %d", c.CandidateMultiplier)
	}
	if c.MetadataWorkers < 1 {
		return fmt.Errorf("metadata workers must be >= 1, got %d", c.MetadataWorkers)
	}
	return nil
}

// clampLimit applies the default and maximum to a requested k.
func (c Config) clampLimit(k int) int {
	if k <= 0 {
		return c.DefaultLimit
	}
	if k > c.MaxLimit {
		return c.MaxLimit
	}
	return k
}
