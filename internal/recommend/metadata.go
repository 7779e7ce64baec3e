// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package recommend

import (
	"context"
	"sort"
	"sync"

	"github.com/moviemind/moviemind/internal/models"
)

// MetadataRanker ranks catalog items by Jaccard similarity of their
// genre+keyword feature sets against a query title. Metadata comes from the
// external lookup; a failed lookup is treated as an empty feature set so a
// flaky collaborator degrades scores instead of aborting the ranking.
type MetadataRanker struct {
	catalog *Catalog
	lookup  MetadataLookup
	workers int
}

// NewMetadataRanker builds a ranker fanning metadata lookups across at most
// workers goroutines.
func NewMetadataRanker(catalog *Catalog, lookup MetadataLookup, workers int) *MetadataRanker {
	if workers < 1 {
		workers = 1
	}
	return &MetadataRanker{catalog: catalog, lookup: lookup, workers: workers}
}

// Rank returns the k catalog items whose feature sets are most similar to
// the query title's, most similar first, query excluded. Ties break by
// catalog row order. Returns ErrNotFound for an unknown title.
func (r *MetadataRanker) Rank(ctx context.Context, title string, k int) ([]models.Movie, error) {
	queryRow, err := r.catalog.RowIndex(title)
	if err != nil {
		return nil, err
	}
	query, err := r.catalog.ByRow(queryRow)
	if err != nil {
		return nil, err
	}
	target := featureSet(r.fetch(ctx, query.ID))

	n := r.catalog.Len()
	scores := make([]float64, n)

	// Fan out one lookup per candidate; only the final sort is ordered.
	var wg sync.WaitGroup
	sem := make(chan struct{}, r.workers)
	for row := range n {
		if row == queryRow {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(row int) {
			defer wg.Done()
			defer func() { <-sem }()
			m, err := r.catalog.ByRow(row)
			if err != nil {
				return
			}
			candidate := featureSet(r.fetch(ctx, m.ID))
			scores[row] = jaccard(target, candidate)
		}(row)
	}
	wg.Wait()

	rows := make([]int, 0, n-1)
	for row := range n {
		if row != queryRow {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if scores[rows[i]] != scores[rows[j]] {
			return scores[rows[i]] > scores[rows[j]]
		}
		return rows[i] < rows[j]
	})

	if k > len(rows) {
		k = len(rows)
	}
	out := make([]models.Movie, 0, k)
	for _, row := range rows[:k] {
		m, err := r.catalog.ByRow(row)
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// fetch returns the metadata for id, empty on any collaborator failure.
func (r *MetadataRanker) fetch(ctx context.Context, id int) models.Metadata {
	md, err := r.lookup.GetMetadata(ctx, id)
	if err != nil {
		return models.Metadata{}
	}
	return md
}

// featureSet flattens metadata into one membership set over genre and
// keyword ids. TMDB keyword ids occupy a far larger numeric range than the
// 19 genre ids, so a plain union is adequate.
func featureSet(md models.Metadata) map[int]struct{} {
	set := make(map[int]struct{}, len(md.GenreIDs)+len(md.KeywordIDs))
	for _, g := range md.GenreIDs {
		set[g] = struct{}{}
	}
	for _, kw := range md.KeywordIDs {
		set[kw] = struct{}{}
	}
	return set
}

// jaccard computes |A∩B| / |A∪B|, defined as 0 when both sets are empty.
func jaccard(a, b map[int]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for v := range a {
		if _, ok := b[v]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
