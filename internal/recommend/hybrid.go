// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package recommend

import (
	"context"
	"sort"

	"github.com/moviemind/moviemind/internal/models"
)

// HybridBlender fuses the content ranker and the affinity predictor into one
// list by positional rank fusion. The two sources score on incomparable
// scales ([-1,1] similarity vs [1,5] ratings), so fusion works on list
// positions, never on raw scores. Either source may fail independently; a
// failed source contributes an empty candidate list and the blender itself
// never fails outright.
type HybridBlender struct {
	catalog  *Catalog
	content  *ContentRanker
	affinity *AffinityPredictor
	fallback *FallbackChain
	cfg      Config
}

// NewHybridBlender builds a blender over both rankers and the fallback chain.
func NewHybridBlender(catalog *Catalog, content *ContentRanker, affinity *AffinityPredictor, fallback *FallbackChain, cfg Config) *HybridBlender {
	return &HybridBlender{
		catalog:  catalog,
		content:  content,
		affinity: affinity,
		fallback: fallback,
		cfg:      cfg,
	}
}

// Rank returns up to k movies blending content similarity to title with
// predicted affinity for userID. contentWeight is the content share in
// [0,1]; the collaborative share is its complement. Candidates that cannot
// be resolved in the catalog are dropped and backfilled from the fallback
// chain, as is an entirely empty union.
func (b *HybridBlender) Rank(ctx context.Context, title, userID string, k int, contentWeight float64) []models.Movie {
	if k <= 0 {
		return []models.Movie{}
	}
	if contentWeight < 0 {
		contentWeight = 0
	}
	if contentWeight > 1 {
		contentWeight = 1
	}
	collabWeight := 1 - contentWeight
	pool := k * b.cfg.CandidateMultiplier

	contentList, err := b.content.Rank(title, pool)
	if err != nil {
		contentList = nil
	}
	affinityList, err := b.affinity.RankUnseen(ctx, userID, pool)
	if err != nil {
		affinityList = nil
	}

	queryID := -1
	if q, err := b.catalog.ByTitle(title); err == nil {
		queryID = q.ID
	}

	type candidate struct {
		movie models.Movie
		row   int
		score float64
	}
	byID := make(map[int]*candidate)
	// Zero-weight sources still contribute candidates (at score zero); the
	// union matters even when one side's ordering does not.
	accumulate := func(list []models.Movie, weight float64) {
		n := len(list)
		if n == 0 {
			return
		}
		for pos, m := range list {
			if m.ID == queryID {
				continue
			}
			row, err := b.rowOf(m)
			if err != nil {
				// No resolvable catalog record; dropped, backfilled below.
				continue
			}
			score := weight * float64(n-pos) / float64(n)
			if c, ok := byID[m.ID]; ok {
				c.score += score
			} else {
				byID[m.ID] = &candidate{movie: m, row: row, score: score}
			}
		}
	}
	accumulate(contentList, contentWeight)
	accumulate(affinityList, collabWeight)

	ranked := make([]*candidate, 0, len(byID))
	for _, c := range byID {
		ranked = append(ranked, c)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].row < ranked[j].row
	})

	out := make([]models.Movie, 0, k)
	for _, c := range ranked {
		if len(out) == k {
			break
		}
		out = append(out, c.movie)
	}
	if len(out) < k {
		out = b.backfill(ctx, out, queryID, k)
	}
	return out
}

// rowOf resolves a candidate's catalog row, matching by id first and by
// title as a fallback for sources that renumber.
func (b *HybridBlender) rowOf(m models.Movie) (int, error) {
	if cm, err := b.catalog.ByID(m.ID); err == nil {
		return b.catalog.RowIndex(cm.Title)
	}
	return b.catalog.RowIndex(m.Title)
}

// backfill tops the list up to k with popular items not already present.
func (b *HybridBlender) backfill(ctx context.Context, out []models.Movie, queryID, k int) []models.Movie {
	seen := make(map[int]struct{}, len(out))
	for _, m := range out {
		seen[m.ID] = struct{}{}
	}
	for _, m := range b.fallback.Popular(ctx, k*b.cfg.CandidateMultiplier) {
		if len(out) == k {
			break
		}
		if m.ID == queryID {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}
