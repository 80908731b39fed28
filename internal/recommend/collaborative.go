// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package recommend

import (
	"context"
	"fmt"

	"github.com/moviematch/moviematch/internal/models"
)

const collaborativeReason = "Collaborative score from user ratings"

// CollaborativeScorer ranks the catalog by mean historical rating, excluding
// titles the requester has already rated. When the exclusion leaves nothing
// (sparse catalogs, prolific raters) it widens to the full catalog rather
// than returning empty.
type CollaborativeScorer struct {
	catalog CatalogReader
}

func NewCollaborativeScorer(catalog CatalogReader) *CollaborativeScorer {
	return &CollaborativeScorer{catalog: catalog}
}

func (s *CollaborativeScorer) Mode() models.Mode { return models.ModeCollaborative }

func (s *CollaborativeScorer) Score(ctx context.Context, req models.RecommendationRequest) ([]models.MovieRecommendation, error) {
	limit := req.ClampTopK()

	movies, err := s.catalog.TopRated(ctx, req.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("collaborative top rated: %w", err)
	}
	if len(movies) == 0 && req.UserID != 0 {
		movies, err = s.catalog.TopRated(ctx, 0, limit)
		if err != nil {
			return nil, fmt.Errorf("collaborative widened top rated: %w", err)
		}
	}
	return toRecommendations(movies, collaborativeReason), nil
}
