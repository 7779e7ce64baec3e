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

func TestCatalogLookups(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog([]models.Movie{
		movie(10, "Inception"),
		movie(20, "Arrival"),
		movie(30, "Heat"),
	})

	tests := []struct {
		name    string
		title   string
		wantID  int
		wantErr bool
	}{
		{name: "exact title", title: "Inception", wantID: 10},
		{name: "case insensitive", title: "aRRivAl", wantID: 20},
		{name: "unknown title", title: "Solaris", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, err := catalog.ByTitle(tt.title)
			if tt.wantErr {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("ByTitle(%q) error = %v, want ErrNotFound", tt.title, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ByTitle(%q) error = %v", tt.title, err)
			}
			if m.ID != tt.wantID {
				t.Errorf("ByTitle(%q).ID = %d, want %d", tt.title, m.ID, tt.wantID)
			}
		})
	}
}

func TestCatalogDuplicateTitleFirstWins(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog([]models.Movie{
		movie(1, "The Thing"),
		movie(2, "The Thing"),
	})

	m, err := catalog.ByTitle("the thing")
	if err != nil {
		t.Fatalf("ByTitle() error = %v", err)
	}
	if m.ID != 1 {
		t.Errorf("ByTitle() resolved id %d, want first row id 1", m.ID)
	}
	row, err := catalog.RowIndex("The Thing")
	if err != nil {
		t.Fatalf("RowIndex() error = %v", err)
	}
	if row != 0 {
		t.Errorf("RowIndex() = %d, want 0", row)
	}
}

func TestCatalogRowOrderPreserved(t *testing.T) {
	t.Parallel()

	in := []models.Movie{movie(5, "E"), movie(3, "C"), movie(4, "D")}
	catalog := NewCatalog(in)

	if catalog.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", catalog.Len())
	}
	for i, want := range in {
		got, err := catalog.ByRow(i)
		if err != nil {
			t.Fatalf("ByRow(%d) error = %v", i, err)
		}
		if got.ID != want.ID {
			t.Errorf("ByRow(%d).ID = %d, want %d", i, got.ID, want.ID)
		}
	}
	if _, err := catalog.ByRow(3); !errors.Is(err, ErrNotFound) {
		t.Errorf("ByRow(out of range) error = %v, want ErrNotFound", err)
	}
}

func TestCatalogEmpty(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog(nil)
	if catalog.Len() != 0 {
		t.Errorf("Len() = %d, want 0", catalog.Len())
	}
	if _, err := catalog.ByTitle("anything"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ByTitle() on empty catalog error = %v, want ErrNotFound", err)
	}
	if _, err := catalog.ByID(1); !errors.Is(err, ErrNotFound) {
		t.Errorf("ByID() on empty catalog error = %v, want ErrNotFound", err)
	}
	if got := catalog.Movies(); len(got) != 0 {
		t.Errorf("Movies() = %d rows, want 0", len(got))
	}
}
