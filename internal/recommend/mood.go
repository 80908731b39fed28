// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/moviematch/moviematch/internal/models"
)

// moodGenres is the fixed mood keyword to genre-tag table. Keywords outside
// the table use the "neutral" set.
var moodGenres = map[string][]string{
	"happy":   {"Comedy", "Adventure", "Animation", "Family", "Romance"},
	"sad":     {"Drama", "Romance"},
	"angry":   {"Action", "Thriller", "Crime"},
	"fear":    {"Horror", "Thriller", "Mystery"},
	"neutral": {"Drama", "Adventure", "Comedy"},
}

// MoodScorer maps a mood keyword in the request query to genre tags and
// ranks matching titles like the text scorer. Empty results delegate to
// collaborative.
type MoodScorer struct {
	catalog       CatalogReader
	collaborative *CollaborativeScorer
}

func NewMoodScorer(catalog CatalogReader, collaborative *CollaborativeScorer) *MoodScorer {
	return &MoodScorer{catalog: catalog, collaborative: collaborative}
}

func (s *MoodScorer) Mode() models.Mode { return models.ModeMood }

func (s *MoodScorer) Score(ctx context.Context, req models.RecommendationRequest) ([]models.MovieRecommendation, error) {
	mood := strings.ToLower(strings.TrimSpace(req.Query))
	if mood == "" {
		mood = "neutral"
	}
	genres, ok := moodGenres[mood]
	if !ok {
		genres = moodGenres["neutral"]
	}

	movies, err := s.catalog.SearchGenres(ctx, genres, req.ClampTopK())
	if err != nil {
		return nil, fmt.Errorf("mood genre search: %w", err)
	}
	if len(movies) == 0 {
		return s.collaborative.Score(ctx, req)
	}
	return toRecommendations(movies, fmt.Sprintf("Mood-to-genre match for '%s'", mood)), nil
}
