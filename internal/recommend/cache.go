// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package recommend

import (
	"sync"
	"time"

	"github.com/moviemind/moviemind/internal/metrics"
	"github.com/moviemind/moviemind/internal/models"
)

// responseCache is a small TTL cache for ranked lists, keyed by
// operation+arguments. Mood requests are never cached so their documented
// fallback variance survives. Expired entries are dropped lazily on read.
type responseCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	movies  []models.Movie
	expires time.Time
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *responseCache) get(key string) ([]models.Movie, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		metrics.RecordCacheMiss("response")
		return nil, false
	}
	if time.Now().After(entry.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		size := len(c.entries)
		c.mu.Unlock()
		metrics.EngineCacheSize.Set(float64(size))
		metrics.CacheEvictions.WithLabelValues("response").Inc()
		metrics.RecordCacheMiss("response")
		return nil, false
	}
	metrics.RecordCacheHit("response")
	return entry.movies, true
}

func (c *responseCache) set(key string, movies []models.Movie) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{movies: movies, expires: time.Now().Add(c.ttl)}
	size := len(c.entries)
	c.mu.Unlock()
	metrics.EngineCacheSize.Set(float64(size))
}
