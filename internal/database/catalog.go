// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ScoredMovie is one catalog row with its aggregated rating data, ordered by
// the query that produced it. HasRating distinguishes a genuine 0.0 mean from
// a title nobody has rated.
type ScoredMovie struct {
	ID         int64
	Title      string
	MeanRating float64
	HasRating  bool
}

// meanRatingsCTE aggregates the ratings table to one mean per movie.
// Every catalog query joins against it so ordering stays deterministic:
// rated-before-unrated, mean descending, id ascending.
const meanRatingsCTE = `WITH mean_ratings AS (
	SELECT movie_id, AVG(rating) AS avg_rating
	FROM user_ratings
	GROUP BY movie_id
)`

// TopRated returns catalog items ranked by mean historical rating, excluding
// items the given user has already rated. Pass excludeUserID = 0 for the
// unfiltered catalog. Only rated titles qualify; ties break by ascending id.
func (db *DB) TopRated(ctx context.Context, excludeUserID int64, limit int) ([]ScoredMovie, error) {
	query := meanRatingsCTE + `
	SELECT m.id, m.title, r.avg_rating
	FROM movies m
	JOIN mean_ratings r ON r.movie_id = m.id
	WHERE ? = 0 OR m.id NOT IN (
		SELECT movie_id FROM user_ratings WHERE user_id = ?
	)
	ORDER BY r.avg_rating DESC, m.id ASC
	LIMIT ?`

	rows, err := db.conn.QueryContext(ctx, query, excludeUserID, excludeUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("query top rated: %w", err)
	}
	return scanScoredMovies(rows, true)
}

// SearchText returns catalog items whose title or overview contains the query
// substring, case-insensitive. Rated titles sort before unrated ones, then by
// mean rating descending, then id ascending.
func (db *DB) SearchText(ctx context.Context, text string, limit int) ([]ScoredMovie, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(text)) + "%"

	query := meanRatingsCTE + `
	SELECT m.id, m.title, r.avg_rating
	FROM movies m
	LEFT JOIN mean_ratings r ON r.movie_id = m.id
	WHERE lower(m.title) LIKE ? OR lower(coalesce(m.overview, '')) LIKE ?
	ORDER BY (r.avg_rating IS NOT NULL) DESC, coalesce(r.avg_rating, 0) DESC, m.id ASC
	LIMIT ?`

	rows, err := db.conn.QueryContext(ctx, query, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("query text search: %w", err)
	}
	return scanScoredMovies(rows, false)
}

// SearchGenres returns catalog items tagged with any of the given genres,
// ordered like SearchText.
func (db *DB) SearchGenres(ctx context.Context, genres []string, limit int) ([]ScoredMovie, error) {
	if len(genres) == 0 {
		return nil, nil
	}

	conditions := make([]string, len(genres))
	args := make([]interface{}, 0, len(genres)+1)
	for i, g := range genres {
		conditions[i] = `lower(coalesce(m.genres, '')) LIKE ?`
		args = append(args, "%"+strings.ToLower(g)+"%")
	}
	args = append(args, limit)

	query := meanRatingsCTE + `
	SELECT m.id, m.title, r.avg_rating
	FROM movies m
	LEFT JOIN mean_ratings r ON r.movie_id = m.id
	WHERE ` + strings.Join(conditions, " OR ") + `
	ORDER BY (r.avg_rating IS NOT NULL) DESC, coalesce(r.avg_rating, 0) DESC, m.id ASC
	LIMIT ?`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query genre search: %w", err)
	}
	return scanScoredMovies(rows, false)
}

// scanScoredMovies drains a result set into ScoredMovie values.
// ratingRequired marks queries whose join guarantees a non-null mean.
func scanScoredMovies(rows *sql.Rows, ratingRequired bool) ([]ScoredMovie, error) {
	defer closeQuietly(rows)

	var movies []ScoredMovie
	for rows.Next() {
		var m ScoredMovie
		var rating sql.NullFloat64
		if err := rows.Scan(&m.ID, &m.Title, &rating); err != nil {
			return nil, fmt.Errorf("scan movie row: %w", err)
		}
		m.HasRating = rating.Valid || ratingRequired
		if rating.Valid {
			m.MeanRating = rating.Float64
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movie rows: %w", err)
	}
	return movies, nil
}

// AddMovie inserts a catalog item. Used by seeding and tests.
func (db *DB) AddMovie(ctx context.Context, id int64, title string, year int, genres, overview string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO movies (id, title, year, genres, overview) VALUES (?, ?, ?, ?, ?)`,
		id, title, year, genres, overview)
	if err != nil {
		return fmt.Errorf("insert movie %d: %w", id, err)
	}
	return nil
}

// AddRating records a user's rating for a movie, replacing any prior rating
// by the same user for the same title.
func (db *DB) AddRating(ctx context.Context, userID, movieID int64, rating float64) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO user_ratings (user_id, movie_id, rating) VALUES (?, ?, ?)`,
		userID, movieID, rating)
	if err != nil {
		return fmt.Errorf("insert rating user=%d movie=%d: %w", userID, movieID, err)
	}
	return nil
}
