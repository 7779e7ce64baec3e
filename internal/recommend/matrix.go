// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package recommend

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// SimilarityMatrix is a square matrix of precomputed item-item similarity
// scores in [-1,1], indexed by catalog row position. It is loaded once at
// startup and read-only afterwards. Symmetry is not assumed; the diagonal is
// conventionally 1.0 but consumers exclude the query row explicitly rather
// than relying on it.
type SimilarityMatrix struct {
	rows [][]float64
}

// LoadSimilarityMatrix reads a JSON-encoded [][]float64 from path.
func LoadSimilarityMatrix(path string) (*SimilarityMatrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read similarity matrix: %w", err)
	}
	var rows [][]float64
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode similarity matrix: %w", err)
	}
	m := &SimilarityMatrix{rows: rows}
	if err := m.validateSquare(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewSimilarityMatrix wraps an in-memory matrix, validating squareness.
func NewSimilarityMatrix(rows [][]float64) (*SimilarityMatrix, error) {
	m := &SimilarityMatrix{rows: rows}
	if err := m.validateSquare(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *SimilarityMatrix) validateSquare() error {
	n := len(m.rows)
	for i, row := range m.rows {
		if len(row) != n {
			return fmt.Errorf("similarity matrix row %d has %d entries, want %d", i, len(row), n)
		}
	}
	return nil
}

// Len returns the matrix dimension.
func (m *SimilarityMatrix) Len() int {
	return len(m.rows)
}

// Row returns the similarity scores of the item at the given row against
// every catalog item.
func (m *SimilarityMatrix) Row(i int) ([]float64, error) {
	if i < 0 || i >= len(m.rows) {
		return nil, fmt.Errorf("%w: matrix row %d out of range", ErrRankerUnavailable, i)
	}
	return m.rows[i], nil
}
