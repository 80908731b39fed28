// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package database

import (
	"context"
	"fmt"

	"github.com/moviematch/moviematch/internal/models"
)

// PersistRecommendation writes the request record and its ranked results in a
// single transaction. Either the full set becomes visible or nothing does;
// there is never a request row without its results. Ranks are assigned here,
// contiguous from 1 in slice order.
//
// The write is idempotent per job id. The broker delivers at least once, so
// a redelivered job replaces its earlier rows instead of conflicting on the
// primary key.
func (db *DB) PersistRecommendation(ctx context.Context, jobID string, userID int64, mode models.Mode, payload string, results []models.MovieRecommendation) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin persist transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			rollbackWithLog(tx.Rollback)
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO recommendation_requests (id, user_id, mode, payload, status)
		 VALUES (?, ?, ?, ?, 'completed')`,
		jobID, userID, string(mode), payload)
	if err != nil {
		return fmt.Errorf("upsert request %s: %w", jobID, err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM recommendation_results WHERE request_id = ?`, jobID)
	if err != nil {
		return fmt.Errorf("clear results %s: %w", jobID, err)
	}

	for i, rec := range results {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO recommendation_results (request_id, movie_id, score, rank, explanation)
			 VALUES (?, ?, ?, ?, ?)`,
			jobID, rec.MovieID, rec.Score, i+1, rec.Reason)
		if err != nil {
			return fmt.Errorf("insert result %s rank %d: %w", jobID, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit persist transaction: %w", err)
	}
	committed = true
	return nil
}

// PersistedResult is one stored recommendation row read back from the audit
// record.
type PersistedResult struct {
	MovieID     int64
	Score       float64
	Rank        int
	Explanation string
}

// RecommendationResults returns the stored results for a request, ordered by
// rank. Returns ErrNotFound when no request row exists.
func (db *DB) RecommendationResults(ctx context.Context, jobID string) ([]PersistedResult, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT count(*) > 0 FROM recommendation_requests WHERE id = ?`, jobID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check request %s: %w", jobID, err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT movie_id, score, rank, coalesce(explanation, '')
		 FROM recommendation_results
		 WHERE request_id = ?
		 ORDER BY rank ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("query results %s: %w", jobID, err)
	}
	defer closeQuietly(rows)

	var results []PersistedResult
	for rows.Next() {
		var r PersistedResult
		if err := rows.Scan(&r.MovieID, &r.Score, &r.Rank, &r.Explanation); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result rows: %w", err)
	}
	return results, nil
}
