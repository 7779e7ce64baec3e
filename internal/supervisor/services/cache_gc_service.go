// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package services

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/moviemind/moviemind/internal/logging"
	"github.com/moviemind/moviemind/internal/metrics"
)

// CacheGCService periodically runs Badger value-log garbage collection so
// expired TMDB response entries actually release disk space. Badger never
// reclaims value-log space on its own; someone has to drive the GC loop.
type CacheGCService struct {
	db       *badger.DB
	interval time.Duration
}

// NewCacheGCService wraps db with a GC loop at the given interval.
func NewCacheGCService(db *badger.DB, interval time.Duration) *CacheGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &CacheGCService{db: db, interval: interval}
}

// Serve implements suture.Service.
func (s *CacheGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runGC()
		}
	}
}

// runGC reclaims value-log files until a pass rewrites nothing.
func (s *CacheGCService) runGC() {
	for {
		err := s.db.RunValueLogGC(0.5)
		if err == nil {
			metrics.CacheEvictions.WithLabelValues("tmdb").Inc()
			continue
		}
		if !errors.Is(err, badger.ErrNoRewrite) {
			logging.Warn().Err(err).Msg("cache value-log GC failed")
		}
		return
	}
}

// String identifies the service in supervisor logs.
func (s *CacheGCService) String() string {
	return "cache-gc"
}
