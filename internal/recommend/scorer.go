// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

// Package recommend implements the scoring policies that turn a
// recommendation request into a ranked movie list.
//
// Each mode (collaborative, nlp, mood) is a Scorer over a read-only catalog.
// Scorers are pure: identical catalog and rating state always produces the
// identical ranked list. The retry and fallback behaviors the worker needs
// are separate decorators (WithRetry, WithFallback) so each policy stays
// independently testable.
package recommend

import (
	"context"
	"errors"
	"math"

	"github.com/moviematch/moviematch/internal/database"
	"github.com/moviematch/moviematch/internal/models"
)

// ErrEmptyResult marks a job that produced no recommendations even after the
// fallback policy ran. It is a terminal outcome, never retried.
var ErrEmptyResult = errors.New("no recommendations produced")

// CatalogReader is the read-only slice of the persistence store the scorers
// need. *database.DB satisfies it.
type CatalogReader interface {
	TopRated(ctx context.Context, excludeUserID int64, limit int) ([]database.ScoredMovie, error)
	SearchText(ctx context.Context, text string, limit int) ([]database.ScoredMovie, error)
	SearchGenres(ctx context.Context, genres []string, limit int) ([]database.ScoredMovie, error)
}

// Scorer computes a ranked recommendation list for one mode.
type Scorer interface {
	Mode() models.Mode
	Score(ctx context.Context, req models.RecommendationRequest) ([]models.MovieRecommendation, error)
}

// Registry holds one scorer per mode.
type Registry struct {
	scorers map[models.Mode]Scorer
}

// NewRegistry builds the standard three-mode registry over a catalog.
func NewRegistry(catalog CatalogReader) *Registry {
	collaborative := NewCollaborativeScorer(catalog)
	return &Registry{scorers: map[models.Mode]Scorer{
		models.ModeCollaborative: collaborative,
		models.ModeNLP:           NewTextMatchScorer(catalog, collaborative),
		models.ModeMood:          NewMoodScorer(catalog, collaborative),
	}}
}

// For returns the scorer for a mode, or false when the mode is unknown.
func (r *Registry) For(mode models.Mode) (Scorer, bool) {
	s, ok := r.scorers[mode]
	return s, ok
}

// round3 matches the stored score precision.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func toRecommendations(movies []database.ScoredMovie, reason string) []models.MovieRecommendation {
	recs := make([]models.MovieRecommendation, 0, len(movies))
	for i, m := range movies {
		recs = append(recs, models.MovieRecommendation{
			MovieID: m.ID,
			Title:   m.Title,
			Score:   round3(m.MeanRating),
			Reason:  reason,
			Rank:    i + 1,
		})
	}
	return recs
}
