// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package database

import (
	"context"
	"fmt"

	"github.com/moviematch/moviematch/internal/logging"
)

type seedMovie struct {
	id       int64
	title    string
	year     int
	genres   string
	overview string
}

type seedRating struct {
	userID  int64
	movieID int64
	rating  float64
}

// SeedSampleData loads a small demo catalog so the service is usable out of
// the box. Idempotent: reruns on an already-seeded database are no-ops.
func (db *DB) SeedSampleData(ctx context.Context) error {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM movies`).Scan(&count); err != nil {
		return fmt.Errorf("count movies: %w", err)
	}
	if count > 0 {
		return nil
	}

	movies := []seedMovie{
		{1, "The Last Horizon", 2019, "drama,adventure", "An explorer crosses a dying frontier in search of a lost settlement."},
		{2, "Midnight Circuit", 2021, "action,thriller", "A courier races through a locked-down city with one night to deliver."},
		{3, "Paper Lanterns", 2018, "drama,romance", "Two strangers meet every year at the same festival without exchanging names."},
		{4, "Static", 2020, "horror,thriller", "A late-night radio host starts taking calls from a dead frequency."},
		{5, "The Comedian's Handbook", 2022, "comedy", "A failed accountant inherits a comedy club and its impossible regulars."},
		{6, "Glass Harvest", 2017, "science fiction,drama", "Farmers on an orbital colony discover their crops are listening."},
		{7, "Borrowed Time", 2023, "comedy,family", "A grandfather and grandson swap routines for one chaotic summer."},
		{8, "Under the Floodline", 2016, "documentary", "Residents of a sinking delta town document their last decade at home."},
		{9, "Iron Orchard", 2021, "action,adventure", "A salvage crew fights over the wreck of a legendary warship."},
		{10, "Quiet Rooms", 2019, "drama", "A hospice musician learns the final requests of her patients."},
		{11, "The Calcutta Cipher", 2020, "mystery,thriller", "A retired codebreaker is pulled back by a message only she can read."},
		{12, "Sunny Side Down", 2022, "comedy,romance", "Rival breakfast-truck owners are forced to share a single parking spot."},
	}

	ratings := []seedRating{
		{1, 1, 4.5}, {1, 2, 4.0}, {1, 5, 3.5},
		{2, 1, 4.0}, {2, 3, 5.0}, {2, 4, 2.5}, {2, 10, 4.5},
		{3, 3, 4.5}, {3, 6, 4.0}, {3, 10, 5.0}, {3, 11, 3.5},
		{4, 2, 3.0}, {4, 4, 4.0}, {4, 9, 4.5}, {4, 11, 4.0},
		{5, 3, 4.0}, {5, 7, 3.5}, {5, 10, 4.5}, {5, 12, 4.0},
	}

	for _, m := range movies {
		if err := db.AddMovie(ctx, m.id, m.title, m.year, m.genres, m.overview); err != nil {
			return err
		}
	}
	for _, r := range ratings {
		if err := db.AddRating(ctx, r.userID, r.movieID, r.rating); err != nil {
			return err
		}
	}

	logging.Info().Int("movies", len(movies)).Int("ratings", len(ratings)).Msg("Seeded sample catalog")
	return nil
}
