// MovieMind - Hybrid Movie Recommendation Service
// Copyright 2026 MovieMind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviemind/moviemind

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/moviemind/moviemind/internal/metrics"
	"github.com/moviemind/moviemind/internal/models"
)

// Store wraps the DuckDB connection holding the movie catalog and the
// append-only rating history. Rating events are never updated in place;
// appends are single-statement inserts, so concurrent readers never observe
// a torn record.
type Store struct {
	conn *sql.DB
}

// New opens (or creates) the database at path and initializes the schema.
// An empty path opens an in-memory database.
func New(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory %s: %w", dir, err)
			}
		}
	}

	conn, err := sql.Open("duckdb", path+"?autoinstall_known_extensions=false&autoload_known_extensions=false")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.initialize(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) initialize() error {
	const schema = `
CREATE TABLE IF NOT EXISTS movies (
	id           INTEGER PRIMARY KEY,
	title        VARCHAR NOT NULL,
	genre_ids    VARCHAR,
	runtime      INTEGER,
	release_date VARCHAR,
	rating       DOUBLE,
	description  VARCHAR,
	row_order    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS ratings (
	id         VARCHAR PRIMARY KEY,
	user_id    VARCHAR NOT NULL,
	movie_id   INTEGER NOT NULL,
	rating     DOUBLE NOT NULL,
	review     VARCHAR NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
ALTER TABLE ratings ADD COLUMN IF NOT EXISTS review VARCHAR DEFAULT '';
CREATE TABLE IF NOT EXISTS watchlist (
	user_id  VARCHAR NOT NULL,
	movie_id INTEGER NOT NULL,
	title    VARCHAR NOT NULL,
	added_at TIMESTAMP NOT NULL,
	PRIMARY KEY (user_id, movie_id)
);
CREATE INDEX IF NOT EXISTS idx_ratings_user ON ratings(user_id);
CREATE INDEX IF NOT EXISTS idx_ratings_movie ON ratings(movie_id);
`
	_, err := s.conn.Exec(schema)
	return err
}

// ReplaceCatalog atomically replaces the movies table with the given set,
// preserving slice order as the similarity-matrix row order.
func (s *Store) ReplaceCatalog(ctx context.Context, movies []models.Movie) error {
	start := time.Now()
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog replace: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `DELETE FROM movies`); err != nil {
		return fmt.Errorf("clear movies: %w", err)
	}
	for i, m := range movies {
		genres, err := json.Marshal(m.GenreIDs)
		if err != nil {
			return fmt.Errorf("encode genres for movie %d: %w", m.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO movies (id, title, genre_ids, runtime, release_date, rating, description, row_order)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.Title, string(genres), m.Runtime, m.ReleaseDate, m.Rating, m.Description, i)
		if err != nil {
			return fmt.Errorf("insert movie %d: %w", m.ID, err)
		}
	}
	err = tx.Commit()
	metrics.RecordDBQuery("replace", "movies", time.Since(start), err)
	return err
}

// LoadCatalog implements recommend.CatalogSource, returning every movie in
// matrix row order with missing columns defaulted.
func (s *Store) LoadCatalog(ctx context.Context) ([]models.Movie, error) {
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, title, genre_ids, runtime, release_date, rating, description
		 FROM movies ORDER BY row_order`)
	metrics.RecordDBQuery("select", "movies", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	defer rows.Close()

	var movies []models.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

// AppendRating appends one rating event. A zero ID gets a fresh UUID, a
// zero timestamp the current time. The event is never updated afterwards.
func (s *Store) AppendRating(ctx context.Context, ev models.RatingEvent) (models.RatingEvent, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	start := time.Now()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO ratings (id, user_id, movie_id, rating, review, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.UserID, ev.MovieID, ev.Rating, ev.Review, ev.Timestamp)
	metrics.RecordDBQuery("insert", "ratings", time.Since(start), err)
	if err != nil {
		return models.RatingEvent{}, fmt.Errorf("append rating: %w", err)
	}
	metrics.RatingsAppended.Inc()
	return ev, nil
}

// RatedIDs implements recommend.RatingStore. Unknown users yield an empty
// slice.
func (s *Store) RatedIDs(ctx context.Context, userID string) ([]int, error) {
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx,
		`SELECT DISTINCT movie_id FROM ratings WHERE user_id = ?`, userID)
	metrics.RecordDBQuery("select", "ratings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("rated ids: %w", err)
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ItemMeans implements recommend.RatingStore: the mean rating per movie
// over all historical events.
func (s *Store) ItemMeans(ctx context.Context) (map[int]float64, error) {
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx,
		`SELECT movie_id, AVG(rating) FROM ratings GROUP BY movie_id`)
	metrics.RecordDBQuery("select", "ratings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("item means: %w", err)
	}
	defer rows.Close()

	means := make(map[int]float64)
	for rows.Next() {
		var id int
		var mean float64
		if err := rows.Scan(&id, &mean); err != nil {
			return nil, err
		}
		means[id] = mean
	}
	return means, rows.Err()
}

// UserRatings returns the user's full event history, newest first, including
// superseded events.
func (s *Store) UserRatings(ctx context.Context, userID string) ([]models.RatingEvent, error) {
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, user_id, movie_id, rating, review, created_at
		 FROM ratings WHERE user_id = ? ORDER BY created_at DESC`, userID)
	metrics.RecordDBQuery("select", "ratings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("user ratings: %w", err)
	}
	defer rows.Close()

	events := []models.RatingEvent{}
	for rows.Next() {
		var ev models.RatingEvent
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.MovieID, &ev.Rating, &ev.Review, &ev.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// AddToWatchlist saves (or refreshes) one watchlist entry for the user.
// A zero AddedAt gets the current time. Re-adding a movie replaces the
// stored title and timestamp rather than duplicating the row.
func (s *Store) AddToWatchlist(ctx context.Context, userID string, item models.WatchlistItem) (models.WatchlistItem, error) {
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}

	start := time.Now()
	_, err := s.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO watchlist (user_id, movie_id, title, added_at) VALUES (?, ?, ?, ?)`,
		userID, item.MovieID, item.Title, item.AddedAt)
	metrics.RecordDBQuery("insert", "watchlist", time.Since(start), err)
	if err != nil {
		return models.WatchlistItem{}, fmt.Errorf("add to watchlist: %w", err)
	}
	return item, nil
}

// Watchlist returns the user's saved entries, oldest first. Unknown users
// yield an empty slice.
func (s *Store) Watchlist(ctx context.Context, userID string) ([]models.WatchlistItem, error) {
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx,
		`SELECT movie_id, title, added_at FROM watchlist WHERE user_id = ? ORDER BY added_at`, userID)
	metrics.RecordDBQuery("select", "watchlist", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	defer rows.Close()

	items := []models.WatchlistItem{}
	for rows.Next() {
		var item models.WatchlistItem
		if err := rows.Scan(&item.MovieID, &item.Title, &item.AddedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// RemoveFromWatchlist deletes one entry. Removing a movie that is not on the
// list is not an error.
func (s *Store) RemoveFromWatchlist(ctx context.Context, userID string, movieID int) error {
	start := time.Now()
	_, err := s.conn.ExecContext(ctx,
		`DELETE FROM watchlist WHERE user_id = ? AND movie_id = ?`, userID, movieID)
	metrics.RecordDBQuery("delete", "watchlist", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("remove from watchlist: %w", err)
	}
	return nil
}

// UserProfile aggregates the user's history. The latest event per
// (user, movie) pair is authoritative; superseded events still count toward
// nothing here, only the history endpoint sees them.
func (s *Store) UserProfile(ctx context.Context, userID string) (models.UserProfile, error) {
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx, `
		SELECT r.movie_id, r.rating, r.created_at,
		       m.title, m.genre_ids, m.runtime, m.release_date, m.rating, m.description
		FROM (
			SELECT movie_id, rating, created_at,
			       ROW_NUMBER() OVER (PARTITION BY movie_id ORDER BY created_at DESC) AS rn
			FROM ratings WHERE user_id = ?
		) r
		LEFT JOIN movies m ON m.id = r.movie_id
		WHERE r.rn = 1`, userID)
	metrics.RecordDBQuery("select", "ratings", time.Since(start), err)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("user profile: %w", err)
	}
	defer rows.Close()

	type entry struct {
		rated models.RatedMovie
		at    time.Time
	}
	var entries []entry
	var sum float64
	distribution := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}

	for rows.Next() {
		var (
			movieID   int
			rating    float64
			createdAt time.Time
			title     sql.NullString
			genreJSON sql.NullString
			runtime   sql.NullInt64
			release   sql.NullString
			avgRating sql.NullFloat64
			desc      sql.NullString
		)
		if err := rows.Scan(&movieID, &rating, &createdAt,
			&title, &genreJSON, &runtime, &release, &avgRating, &desc); err != nil {
			return models.UserProfile{}, err
		}

		m := models.Movie{
			ID:          movieID,
			Title:       title.String,
			Runtime:     int(runtime.Int64),
			ReleaseDate: release.String,
			Rating:      avgRating.Float64,
			Description: desc.String,
		}
		if genreJSON.Valid && genreJSON.String != "" {
			_ = json.Unmarshal([]byte(genreJSON.String), &m.GenreIDs)
		}
		m = m.Normalize()

		entries = append(entries, entry{
			rated: models.RatedMovie{Movie: m, Rating: rating},
			at:    createdAt,
		})
		sum += rating
		bucket := int(rating + 0.5)
		if bucket < 1 {
			bucket = 1
		}
		if bucket > 5 {
			bucket = 5
		}
		distribution[bucket]++
	}
	if err := rows.Err(); err != nil {
		return models.UserProfile{}, err
	}

	profile := models.UserProfile{
		UserID:             userID,
		TotalReviews:       len(entries),
		RatingDistribution: distribution,
		TopRated:           []models.RatedMovie{},
		RecentlyRated:      []models.RatedMovie{},
	}
	if len(entries) == 0 {
		return profile, nil
	}
	profile.AverageRating = sum / float64(len(entries))

	const highlights = 5

	byRating := append([]entry(nil), entries...)
	sort.SliceStable(byRating, func(i, j int) bool {
		return byRating[i].rated.Rating > byRating[j].rated.Rating
	})
	for i := 0; i < len(byRating) && i < highlights; i++ {
		profile.TopRated = append(profile.TopRated, byRating[i].rated)
	}

	byRecency := append([]entry(nil), entries...)
	sort.SliceStable(byRecency, func(i, j int) bool {
		return byRecency[i].at.After(byRecency[j].at)
	})
	for i := 0; i < len(byRecency) && i < highlights; i++ {
		profile.RecentlyRated = append(profile.RecentlyRated, byRecency[i].rated)
	}
	return profile, nil
}

// scanMovie reads one movies row, applying the documented defaults for
// missing columns.
func scanMovie(rows *sql.Rows) (models.Movie, error) {
	var (
		m         models.Movie
		genreJSON sql.NullString
		runtime   sql.NullInt64
		release   sql.NullString
		rating    sql.NullFloat64
		desc      sql.NullString
	)
	if err := rows.Scan(&m.ID, &m.Title, &genreJSON, &runtime, &release, &rating, &desc); err != nil {
		return models.Movie{}, fmt.Errorf("scan movie: %w", err)
	}
	if genreJSON.Valid && genreJSON.String != "" {
		if err := json.Unmarshal([]byte(genreJSON.String), &m.GenreIDs); err != nil {
			m.GenreIDs = []int{}
		}
	}
	m.Runtime = int(runtime.Int64)
	m.ReleaseDate = release.String
	m.Rating = rating.Float64
	m.Description = desc.String
	return m.Normalize(), nil
}
