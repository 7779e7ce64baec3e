// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package tmdb

import (
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/moviemind/moviemind/internal/metrics"
)

const cacheKeyPrefix = "tmdb:"

// responseCache stores raw TMDB response bodies in BadgerDB with per-entry
// TTLs, so popular/genre lists survive restarts and upstream outages serve
// stale-free cached data for their TTL window. A nil db disables caching.
type responseCache struct {
	db *badger.DB
}

func newResponseCache(db *badger.DB) *responseCache {
	return &responseCache{db: db}
}

// get returns the cached body for key, or false on miss/expiry/error.
func (c *responseCache) get(key string) ([]byte, bool) {
	if c.db == nil {
		return nil, false
	}
	var body []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cacheKeyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			body = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			metrics.RecordCacheMiss("tmdb")
		}
		return nil, false
	}
	metrics.RecordCacheHit("tmdb")
	return body, true
}

// set stores body under key with the given TTL. Write failures are ignored;
// the cache is an optimization, never a dependency.
func (c *responseCache) set(key string, body []byte, ttl time.Duration) {
	if c.db == nil || ttl <= 0 {
		return
	}
	_ = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(cacheKeyPrefix+key), body).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
}
