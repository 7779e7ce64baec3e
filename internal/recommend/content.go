// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package recommend

import (
	"fmt"
	"sort"

	"github.com/moviemind/moviemind/internal/models"
)

// ContentRanker ranks catalog items by precomputed content similarity to a
// query title. Pure in-memory; O(n log n) per call.
type ContentRanker struct {
	catalog *Catalog
	matrix  *SimilarityMatrix
}

// NewContentRanker builds a ranker over catalog and matrix. A nil matrix is
// allowed and leaves the ranker permanently unavailable; the engine then
// degrades every content request to the fallback chain.
func NewContentRanker(catalog *Catalog, matrix *SimilarityMatrix) *ContentRanker {
	return &ContentRanker{catalog: catalog, matrix: matrix}
}

// Available reports whether the matrix is present and sized to the catalog.
func (r *ContentRanker) Available() bool {
	return r.matrix != nil && r.matrix.Len() == r.catalog.Len()
}

// Rank returns the k catalog items most similar to title, most similar
// first, excluding the query item itself. Ties break by ascending catalog
// row. Returns ErrNotFound for an unknown title and ErrRankerUnavailable
// when the matrix is missing or mismatched.
func (r *ContentRanker) Rank(title string, k int) ([]models.Movie, error) {
	if !r.Available() {
		return nil, fmt.Errorf("%w: similarity matrix missing or mismatched", ErrRankerUnavailable)
	}
	queryRow, err := r.catalog.RowIndex(title)
	if err != nil {
		return nil, err
	}
	scores, err := r.matrix.Row(queryRow)
	if err != nil {
		return nil, err
	}

	type scored struct {
		row   int
		score float64
	}
	ranked := make([]scored, 0, len(scores))
	for row, s := range scores {
		if row == queryRow {
			continue
		}
		ranked = append(ranked, scored{row: row, score: s})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].row < ranked[j].row
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]models.Movie, 0, k)
	for _, sc := range ranked[:k] {
		m, err := r.catalog.ByRow(sc.row)
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
