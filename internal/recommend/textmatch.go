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

// TextMatchScorer selects titles whose name or overview contains the query
// substring, case-insensitive. With no query, or when nothing matches, it
// delegates entirely to the collaborative scorer so the caller always gets a
// ranked list when the catalog has one to give.
type TextMatchScorer struct {
	catalog       CatalogReader
	collaborative *CollaborativeScorer
}

func NewTextMatchScorer(catalog CatalogReader, collaborative *CollaborativeScorer) *TextMatchScorer {
	return &TextMatchScorer{catalog: catalog, collaborative: collaborative}
}

func (s *TextMatchScorer) Mode() models.Mode { return models.ModeNLP }

func (s *TextMatchScorer) Score(ctx context.Context, req models.RecommendationRequest) ([]models.MovieRecommendation, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return s.collaborative.Score(ctx, req)
	}

	movies, err := s.catalog.SearchText(ctx, query, req.ClampTopK())
	if err != nil {
		return nil, fmt.Errorf("text match search: %w", err)
	}
	if len(movies) == 0 {
		return s.collaborative.Score(ctx, req)
	}
	return toRecommendations(movies, fmt.Sprintf("NLP text match for query '%s'", query)), nil
}
