// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package recommend

import (
	"testing"
	"time"

	"github.com/moviemind/moviemind/internal/models"
)

func TestResponseCacheRoundTrip(t *testing.T) {
	t.Parallel()

	cache := newResponseCache(time.Minute)
	want := []models.Movie{movie(1, "A")}

	if _, ok := cache.get("k"); ok {
		t.Error("get() on empty cache reported a hit")
	}
	cache.set("k", want)
	got, ok := cache.get("k")
	if !ok {
		t.Fatal("get() after set reported a miss")
	}
	if len(got) != 1 || got[0].Title != "A" {
		t.Errorf("get() = %v, want cached list", titles(got))
	}
}

func TestResponseCacheExpiry(t *testing.T) {
	t.Parallel()

	cache := newResponseCache(time.Nanosecond)
	cache.set("k", []models.Movie{movie(1, "A")})

	time.Sleep(time.Millisecond)
	if _, ok := cache.get("k"); ok {
		t.Error("get() returned an expired entry")
	}
	cache.mu.RLock()
	n := len(cache.entries)
	cache.mu.RUnlock()
	if n != 0 {
		t.Errorf("expired entry was not evicted, %d entries remain", n)
	}
}

func TestResponseCacheDisabled(t *testing.T) {
	t.Parallel()

	cache := newResponseCache(0)
	cache.set("k", []models.Movie{movie(1, "A")})
	if _, ok := cache.get("k"); ok {
		t.Error("zero-TTL cache served an entry")
	}
}
