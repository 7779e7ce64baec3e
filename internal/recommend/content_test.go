// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package recommend

import (
	"errors"
	"testing"

	"github.com/moviemind/moviemind/internal/models"
)

func threeMovieCatalog() *Catalog {
	return NewCatalog([]models.Movie{
		movie(1, "A"),
		movie(2, "B"),
		movie(3, "C"),
	})
}

func TestContentRankerRank(t *testing.T) {
	t.Parallel()

	catalog := threeMovieCatalog()
	matrix, err := NewSimilarityMatrix([][]float64{
		{1.0, 0.9, 0.8},
		{0.9, 1.0, 0.7},
		{0.8, 0.7, 1.0},
	})
	if err != nil {
		t.Fatalf("NewSimilarityMatrix() error = %v", err)
	}
	ranker := NewContentRanker(catalog, matrix)

	got, err := ranker.Rank("A", 2)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if !sameTitles(got, []string{"B", "C"}) {
		t.Errorf("Rank(A, 2) = %v, want [B C]", titles(got))
	}
}

func TestContentRankerExcludesSelf(t *testing.T) {
	t.Parallel()

	catalog := threeMovieCatalog()
	matrix, err := NewSimilarityMatrix([][]float64{
		{1.0, 0.1, 0.1},
		{0.1, 1.0, 0.1},
		{0.1, 0.1, 1.0},
	})
	if err != nil {
		t.Fatalf("NewSimilarityMatrix() error = %v", err)
	}
	ranker := NewContentRanker(catalog, matrix)

	// Even asking for more than the catalog holds must never yield the query.
	got, err := ranker.Rank("B", 10)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	for _, m := range got {
		if m.Title == "B" {
			t.Error("Rank() included the query movie")
		}
	}
	if len(got) != 2 {
		t.Errorf("Rank() returned %d items, want 2", len(got))
	}
}

func TestContentRankerTieBreaksByCatalogOrder(t *testing.T) {
	t.Parallel()

	catalog := threeMovieCatalog()
	matrix, err := NewSimilarityMatrix([][]float64{
		{1.0, 0.5, 0.5},
		{0.5, 1.0, 0.5},
		{0.5, 0.5, 1.0},
	})
	if err != nil {
		t.Fatalf("NewSimilarityMatrix() error = %v", err)
	}
	ranker := NewContentRanker(catalog, matrix)

	got, err := ranker.Rank("C", 2)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if !sameTitles(got, []string{"A", "B"}) {
		t.Errorf("Rank(C, 2) with tied scores = %v, want catalog order [A B]", titles(got))
	}
}

func TestContentRankerErrors(t *testing.T) {
	t.Parallel()

	catalog := threeMovieCatalog()
	square, err := NewSimilarityMatrix([][]float64{
		{1.0, 0.2, 0.3},
		{0.2, 1.0, 0.4},
		{0.3, 0.4, 1.0},
	})
	if err != nil {
		t.Fatalf("NewSimilarityMatrix() error = %v", err)
	}
	mismatched, err := NewSimilarityMatrix([][]float64{
		{1.0, 0.2},
		{0.2, 1.0},
	})
	if err != nil {
		t.Fatalf("NewSimilarityMatrix() error = %v", err)
	}

	tests := []struct {
		name    string
		matrix  *SimilarityMatrix
		title   string
		wantErr error
	}{
		{name: "unknown title", matrix: square, title: "Z", wantErr: ErrNotFound},
		{name: "nil matrix", matrix: nil, title: "A", wantErr: ErrRankerUnavailable},
		{name: "mismatched matrix", matrix: mismatched, title: "A", wantErr: ErrRankerUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ranker := NewContentRanker(catalog, tt.matrix)
			_, err := ranker.Rank(tt.title, 2)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Rank() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSimilarityMatrixRejectsNonSquare(t *testing.T) {
	t.Parallel()

	if _, err := NewSimilarityMatrix([][]float64{{1.0, 0.5}, {0.5}}); err == nil {
		t.Error("NewSimilarityMatrix() accepted a ragged matrix")
	}
}
