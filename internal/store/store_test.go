// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package store

import (
	"context"
	"testing"
	"time"

	"github.com/moviemind/moviemind/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New("")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCatalogRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	in := []models.Movie{
		{ID: 3, Title: "Third First", GenreIDs: []int{18, 35}, Runtime: 95, ReleaseDate: "2011-06-01", Rating: 7.2, Description: "a"},
		{ID: 1, Title: "Then This", GenreIDs: []int{28}, Runtime: 130, ReleaseDate: "1999-03-31", Rating: 8.1, Description: "b"},
	}
	if err := s.ReplaceCatalog(ctx, in); err != nil {
		t.Fatalf("ReplaceCatalog() error = %v", err)
	}

	got, err := s.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("LoadCatalog() returned %d movies, want 2", len(got))
	}
	// Slice order is matrix row order, regardless of ids.
	if got[0].ID != 3 || got[1].ID != 1 {
		t.Errorf("LoadCatalog() order = [%d %d], want [3 1]", got[0].ID, got[1].ID)
	}
	if got[0].Runtime != 95 || len(got[0].GenreIDs) != 2 {
		t.Errorf("LoadCatalog()[0] = %+v, want runtime 95 and 2 genres", got[0])
	}
}

func TestLoadCatalogDefaultsMissingColumns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.conn.ExecContext(ctx,
		`INSERT INTO movies (id, title, row_order) VALUES (7, 'Sparse', 0)`); err != nil {
		t.Fatalf("insert sparse row: %v", err)
	}

	got, err := s.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("LoadCatalog() returned %d movies, want 1", len(got))
	}
	m := got[0]
	if m.Runtime != models.DefaultRuntime {
		t.Errorf("Runtime = %d, want default %d", m.Runtime, models.DefaultRuntime)
	}
	if m.ReleaseDate != models.DefaultReleaseDate {
		t.Errorf("ReleaseDate = %q, want default %q", m.ReleaseDate, models.DefaultReleaseDate)
	}
	if m.Rating != models.DefaultRating {
		t.Errorf("Rating = %v, want default %v", m.Rating, models.DefaultRating)
	}
	if m.Description != models.DefaultDescription {
		t.Errorf("Description = %q, want default", m.Description)
	}
	if m.GenreIDs == nil || len(m.GenreIDs) != 0 {
		t.Errorf("GenreIDs = %v, want empty non-nil", m.GenreIDs)
	}
}

func TestAppendRatingAssignsIDAndTimestamp(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	ev, err := s.AppendRating(ctx, models.RatingEvent{UserID: "u1", MovieID: 10, Rating: 4})
	if err != nil {
		t.Fatalf("AppendRating() error = %v", err)
	}
	if ev.ID == "" {
		t.Error("AppendRating() left ID empty")
	}
	if ev.Timestamp.IsZero() {
		t.Error("AppendRating() left Timestamp zero")
	}

	history, err := s.UserRatings(ctx, "u1")
	if err != nil {
		t.Fatalf("UserRatings() error = %v", err)
	}
	if len(history) != 1 || history[0].MovieID != 10 {
		t.Errorf("UserRatings() = %v, want one event for movie 10", history)
	}
}

func TestUserRatingsNewestFirstWithReview(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []models.RatingEvent{
		{UserID: "u1", MovieID: 1, Rating: 2, Review: "meh", Timestamp: base},
		{UserID: "u1", MovieID: 2, Rating: 5, Review: "brilliant", Timestamp: base.Add(time.Hour)},
		{UserID: "u1", MovieID: 1, Rating: 4, Timestamp: base.Add(2 * time.Hour)},
	}
	for _, ev := range events {
		if _, err := s.AppendRating(ctx, ev); err != nil {
			t.Fatalf("AppendRating() error = %v", err)
		}
	}

	history, err := s.UserRatings(ctx, "u1")
	if err != nil {
		t.Fatalf("UserRatings() error = %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("UserRatings() returned %d events, want all 3 including the superseded one", len(history))
	}
	if history[0].MovieID != 1 || history[0].Rating != 4 {
		t.Errorf("UserRatings()[0] = %+v, want the newest event first", history[0])
	}
	if history[1].Review != "brilliant" {
		t.Errorf("UserRatings()[1].Review = %q, want review text preserved", history[1].Review)
	}
	if history[2].Review != "meh" {
		t.Errorf("UserRatings()[2].Review = %q, want review text preserved", history[2].Review)
	}
}

func TestWatchlistRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first, err := s.AddToWatchlist(ctx, "u1", models.WatchlistItem{MovieID: 1, Title: "Alpha"})
	if err != nil {
		t.Fatalf("AddToWatchlist() error = %v", err)
	}
	if first.AddedAt.IsZero() {
		t.Error("AddToWatchlist() left AddedAt zero")
	}
	if _, err := s.AddToWatchlist(ctx, "u1", models.WatchlistItem{MovieID: 2, Title: "Beta"}); err != nil {
		t.Fatalf("AddToWatchlist() error = %v", err)
	}
	if _, err := s.AddToWatchlist(ctx, "other", models.WatchlistItem{MovieID: 9, Title: "Elsewhere"}); err != nil {
		t.Fatalf("AddToWatchlist() error = %v", err)
	}

	items, err := s.Watchlist(ctx, "u1")
	if err != nil {
		t.Fatalf("Watchlist() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Watchlist() returned %d items, want 2", len(items))
	}
	if items[0].Title != "Alpha" || items[1].Title != "Beta" {
		t.Errorf("Watchlist() order = [%s %s], want oldest first", items[0].Title, items[1].Title)
	}

	none, err := s.Watchlist(ctx, "stranger")
	if err != nil {
		t.Fatalf("Watchlist(unknown user) error = %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("Watchlist(unknown user) = %v, want empty non-nil", none)
	}
}

func TestWatchlistReAddReplaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.AddToWatchlist(ctx, "u1", models.WatchlistItem{MovieID: 1, Title: "Old Title"}); err != nil {
		t.Fatalf("AddToWatchlist() error = %v", err)
	}
	if _, err := s.AddToWatchlist(ctx, "u1", models.WatchlistItem{MovieID: 1, Title: "New Title"}); err != nil {
		t.Fatalf("AddToWatchlist() error = %v", err)
	}

	items, err := s.Watchlist(ctx, "u1")
	if err != nil {
		t.Fatalf("Watchlist() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Watchlist() returned %d items, want re-add to replace, not duplicate", len(items))
	}
	if items[0].Title != "New Title" {
		t.Errorf("Title = %q, want the refreshed title", items[0].Title)
	}
}

func TestWatchlistRemoveIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.AddToWatchlist(ctx, "u1", models.WatchlistItem{MovieID: 1, Title: "Alpha"}); err != nil {
		t.Fatalf("AddToWatchlist() error = %v", err)
	}
	if err := s.RemoveFromWatchlist(ctx, "u1", 1); err != nil {
		t.Fatalf("RemoveFromWatchlist() error = %v", err)
	}
	if err := s.RemoveFromWatchlist(ctx, "u1", 1); err != nil {
		t.Errorf("RemoveFromWatchlist() of an absent entry = %v, want nil", err)
	}

	items, err := s.Watchlist(ctx, "u1")
	if err != nil {
		t.Fatalf("Watchlist() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Watchlist() after removal = %v, want empty", items)
	}
}

func TestRatedIDsDistinct(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, rating := range []float64{2, 5} {
		if _, err := s.AppendRating(ctx, models.RatingEvent{UserID: "u1", MovieID: 10, Rating: rating}); err != nil {
			t.Fatalf("AppendRating() error = %v", err)
		}
	}
	if _, err := s.AppendRating(ctx, models.RatingEvent{UserID: "u1", MovieID: 11, Rating: 3}); err != nil {
		t.Fatalf("AppendRating() error = %v", err)
	}
	if _, err := s.AppendRating(ctx, models.RatingEvent{UserID: "other", MovieID: 99, Rating: 1}); err != nil {
		t.Fatalf("AppendRating() error = %v", err)
	}

	ids, err := s.RatedIDs(ctx, "u1")
	if err != nil {
		t.Fatalf("RatedIDs() error = %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("RatedIDs() = %v, want two distinct ids", ids)
	}

	none, err := s.RatedIDs(ctx, "stranger")
	if err != nil {
		t.Fatalf("RatedIDs(unknown user) error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("RatedIDs(unknown user) = %v, want empty", none)
	}
}

func TestItemMeans(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	ratings := []models.RatingEvent{
		{UserID: "a", MovieID: 1, Rating: 4},
		{UserID: "b", MovieID: 1, Rating: 2},
		{UserID: "a", MovieID: 2, Rating: 5},
	}
	for _, ev := range ratings {
		if _, err := s.AppendRating(ctx, ev); err != nil {
			t.Fatalf("AppendRating() error = %v", err)
		}
	}

	means, err := s.ItemMeans(ctx)
	if err != nil {
		t.Fatalf("ItemMeans() error = %v", err)
	}
	if means[1] != 3.0 {
		t.Errorf("means[1] = %v, want 3.0", means[1])
	}
	if means[2] != 5.0 {
		t.Errorf("means[2] = %v, want 5.0", means[2])
	}
}

func TestUserProfileLatestEventWins(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.ReplaceCatalog(ctx, []models.Movie{
		{ID: 1, Title: "Alpha", GenreIDs: []int{18}, Runtime: 100, ReleaseDate: "2001-01-01", Rating: 7.0, Description: "x"},
	}); err != nil {
		t.Fatalf("ReplaceCatalog() error = %v", err)
	}

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	events := []models.RatingEvent{
		{ID: "e1", UserID: "u", MovieID: 1, Rating: 2, Timestamp: base},
		{ID: "e2", UserID: "u", MovieID: 1, Rating: 5, Timestamp: base.Add(time.Hour)},
	}
	for _, ev := range events {
		if _, err := s.AppendRating(ctx, ev); err != nil {
			t.Fatalf("AppendRating() error = %v", err)
		}
	}

	profile, err := s.UserProfile(ctx, "u")
	if err != nil {
		t.Fatalf("UserProfile() error = %v", err)
	}
	if profile.TotalReviews != 1 {
		t.Errorf("TotalReviews = %d, want 1 (latest event per movie)", profile.TotalReviews)
	}
	if profile.AverageRating != 5 {
		t.Errorf("AverageRating = %v, want 5 from the superseding event", profile.AverageRating)
	}
	if len(profile.TopRated) != 1 || profile.TopRated[0].Movie.Title != "Alpha" {
		t.Errorf("TopRated = %v, want [Alpha]", profile.TopRated)
	}
	if profile.RatingDistribution[5] != 1 || profile.RatingDistribution[2] != 0 {
		t.Errorf("RatingDistribution = %v, want only the 5 bucket filled", profile.RatingDistribution)
	}
}

func TestUserProfileEmpty(t *testing.T) {
	s := testStore(t)

	profile, err := s.UserProfile(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("UserProfile() error = %v", err)
	}
	if profile.TotalReviews != 0 || profile.AverageRating != 0 {
		t.Errorf("UserProfile(unknown) = %+v, want zeroed aggregate", profile)
	}
	if profile.TopRated == nil || profile.RecentlyRated == nil {
		t.Error("UserProfile(unknown) slices are nil, want empty non-nil")
	}
}
