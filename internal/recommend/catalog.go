// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package recommend

import (
	"strings"

	"github.com/moviemind/moviemind/internal/models"
)

// Catalog is a read-only in-memory index over the movie set. Row order
// matches the similarity matrix; the catalog is built once at load time and
// never mutated, so it is safe for concurrent use without locking.
type Catalog struct {
	rows    []models.Movie
	byID    map[int]int
	byTitle map[string]int
}

// NewCatalog indexes the given movies. Row order is preserved. Title lookup
// is case-insensitive; when two movies share a title the first row wins.
func NewCatalog(movies []models.Movie) *Catalog {
	c := &Catalog{
		rows:    make([]models.Movie, len(movies)),
		byID:    make(map[int]int, len(movies)),
		byTitle: make(map[string]int, len(movies)),
	}
	copy(c.rows, movies)
	for i, m := range c.rows {
		if _, dup := c.byID[m.ID]; !dup {
			c.byID[m.ID] = i
		}
		key := strings.ToLower(m.Title)
		if _, dup := c.byTitle[key]; !dup {
			c.byTitle[key] = i
		}
	}
	return c
}

// Len returns the number of catalog rows.
func (c *Catalog) Len() int {
	return len(c.rows)
}

// Movies returns the rows in matrix order. The returned slice is shared;
// callers must not modify it.
func (c *Catalog) Movies() []models.Movie {
	return c.rows
}

// ByRow returns the movie at the given row index.
func (c *Catalog) ByRow(row int) (models.Movie, error) {
	if row < 0 || row >= len(c.rows) {
		return models.Movie{}, ErrNotFound
	}
	return c.rows[row], nil
}

// ByID returns the movie with the given id.
func (c *Catalog) ByID(id int) (models.Movie, error) {
	row, ok := c.byID[id]
	if !ok {
		return models.Movie{}, ErrNotFound
	}
	return c.rows[row], nil
}

// ByTitle returns the first movie whose title matches, case-insensitively.
func (c *Catalog) ByTitle(title string) (models.Movie, error) {
	row, ok := c.byTitle[strings.ToLower(title)]
	if !ok {
		return models.Movie{}, ErrNotFound
	}
	return c.rows[row], nil
}

// RowIndex returns the matrix row for the first movie matching title.
func (c *Catalog) RowIndex(title string) (int, error) {
	row, ok := c.byTitle[strings.ToLower(title)]
	if !ok {
		return 0, ErrNotFound
	}
	return row, nil
}
