// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package recommend

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/moviemind/moviemind/internal/models"
)

// GenreLister resolves genre names to TMDB genre ids.
type GenreLister interface {
	// ListGenres returns the lowercase genre-name → id table.
	ListGenres(ctx context.Context) (map[string]int, error)
}

// MoodConfig holds the constant tables driving mood resolution. The tables
// are injected at construction so tests can pin them; DefaultMoodConfig
// carries the production values.
type MoodConfig struct {
	// MoodGenres maps a mood answer to its candidate genre ids, in
	// query-priority order.
	MoodGenres map[string][]int

	// UnknownMoodGenres is used for any mood absent from MoodGenres.
	UnknownMoodGenres []int

	// KidsAllowList restricts results when watching with kids. When the
	// intersection with the resolved genres is empty the allow-list itself
	// is used, never an empty set.
	KidsAllowList []int

	// FamilyBlockList is subtracted when watching with family. The result
	// may legitimately end up empty.
	FamilyBlockList []int

	// RuntimeWindows maps time_available to an inclusive [min,max] runtime
	// window in minutes.
	RuntimeWindows map[string][2]int

	// DefaultWindow is applied for an absent or unknown time_available.
	DefaultWindow [2]int
}

// DefaultMoodConfig returns the production mood tables.
func DefaultMoodConfig() MoodConfig {
	return MoodConfig{
		MoodGenres: map[string][]int{
			"happy":       {35, 10751, 16, 10402},
			"sad":         {18, 10749, 10402, 99},
			"excited":     {28, 12, 878, 53},
			"relaxed":     {99, 36, 14, 10751},
			"scared":      {27, 53, 9648, 28},
			"romantic":    {10749, 18, 35, 10402},
			"adventurous": {12, 28, 14, 878},
			"thoughtful":  {18, 99, 36, 80},
		},
		UnknownMoodGenres: []int{18},
		KidsAllowList:     []int{16, 10751},
		FamilyBlockList:   []int{27, 53, 80},
		RuntimeWindows: map[string][2]int{
			"short":  {60, 90},
			"medium": {90, 120},
			"long":   {120, 200},
		},
		DefaultWindow: [2]int{90, 120},
	}
}

// MoodFilter turns a mood questionnaire into recommendations by resolving
// the answers to genre and runtime constraints, then querying the genre
// catalog until enough candidates pass. It never fails outright: per-genre
// fetch failures skip that genre, and zero accepted candidates degrade to
// the popularity fallback with every item annotated as not mood-matched.
// The fallback path is the only one that may vary run to run.
type MoodFilter struct {
	genres   GenreCatalog
	lister   GenreLister
	fallback *FallbackChain
	cfg      MoodConfig
	log      zerolog.Logger
}

// NewMoodFilter builds a filter over the genre catalog collaborator.
// lister may be nil; genre preferences then never resolve.
func NewMoodFilter(genres GenreCatalog, lister GenreLister, fallback *FallbackChain, cfg MoodConfig, log zerolog.Logger) *MoodFilter {
	return &MoodFilter{genres: genres, lister: lister, fallback: fallback, cfg: cfg, log: log}
}

// Recommend returns up to k movies matching the profile's resolved
// constraints.
func (f *MoodFilter) Recommend(ctx context.Context, profile models.MoodProfile, k int) []models.MoodResult {
	if k <= 0 {
		return []models.MoodResult{}
	}
	genreIDs := f.resolveGenres(ctx, profile)
	minRuntime, maxRuntime := f.resolveWindow(profile.TimeAvailable)
	avoid := lowerAll(profile.AvoidContent)

	accepted := make([]models.MoodResult, 0, k)
	seenTitles := make(map[string]struct{})

	if f.genres == nil {
		genreIDs = nil
	}
	for _, genreID := range genreIDs {
		if len(accepted) >= k {
			break
		}
		candidates, err := f.genres.GetByGenre(ctx, genreID, k*4)
		if err != nil {
			f.log.Warn().Err(&CollaboratorError{Op: "discover_by_genre", Err: err}).
				Int("genre_id", genreID).Msg("genre query failed, skipping genre")
			continue
		}
		for _, c := range candidates {
			if len(accepted) >= k {
				break
			}
			m := c.Normalize()
			if _, dup := seenTitles[m.Title]; dup {
				continue
			}
			if m.Runtime < minRuntime || m.Runtime > maxRuntime {
				continue
			}
			if containsAvoided(m.Description, avoid) {
				continue
			}
			seenTitles[m.Title] = struct{}{}
			accepted = append(accepted, models.MoodResult{Movie: m, MoodMatched: true})
		}
	}

	if len(accepted) == 0 {
		for _, m := range f.fallback.Popular(ctx, k) {
			accepted = append(accepted, models.MoodResult{Movie: m, MoodMatched: false})
		}
	}
	return accepted
}

// resolveGenres applies steps 1-2 of the mood state machine: mood (or
// preference) to genres, then audience constraints.
func (f *MoodFilter) resolveGenres(ctx context.Context, profile models.MoodProfile) []int {
	genres := f.moodGenres(profile.Mood)

	// A recognized explicit preference replaces the mood genres entirely.
	if pref := strings.ToLower(strings.TrimSpace(profile.GenrePreference)); pref != "" && f.lister != nil {
		if table, err := f.lister.ListGenres(ctx); err == nil {
			if id, ok := table[pref]; ok {
				genres = []int{id}
			}
		}
	}

	switch profile.WatchingWith {
	case "kids":
		allowed := intersect(genres, f.cfg.KidsAllowList)
		if len(allowed) == 0 {
			allowed = append([]int(nil), f.cfg.KidsAllowList...)
		}
		genres = allowed
	case "family":
		genres = subtract(genres, f.cfg.FamilyBlockList)
	}
	return genres
}

func (f *MoodFilter) moodGenres(mood string) []int {
	if ids, ok := f.cfg.MoodGenres[strings.ToLower(mood)]; ok {
		return append([]int(nil), ids...)
	}
	return append([]int(nil), f.cfg.UnknownMoodGenres...)
}

// resolveWindow maps time_available to its inclusive runtime window.
func (f *MoodFilter) resolveWindow(timeAvailable string) (int, int) {
	if w, ok := f.cfg.RuntimeWindows[strings.ToLower(timeAvailable)]; ok {
		return w[0], w[1]
	}
	return f.cfg.DefaultWindow[0], f.cfg.DefaultWindow[1]
}

// containsAvoided reports whether the description contains any avoided term
// as a case-insensitive substring. Deliberately crude: "alien" also matches
// "alienation".
func containsAvoided(description string, avoid []string) bool {
	if len(avoid) == 0 {
		return false
	}
	desc := strings.ToLower(description)
	for _, term := range avoid {
		if term != "" && strings.Contains(desc, term) {
			return true
		}
	}
	return false
}

func lowerAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		out = append(out, strings.ToLower(strings.TrimSpace(t)))
	}
	return out
}

func intersect(a, b []int) []int {
	set := make(map[int]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	out := make([]int, 0, len(a))
	for _, v := range a {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

func subtract(a, b []int) []int {
	set := make(map[int]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	out := make([]int, 0, len(a))
	for _, v := range a {
		if _, ok := set[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
