// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package recommend

import (
	"context"

	"github.com/moviematch/moviematch/internal/logging"
	"github.com/moviematch/moviematch/internal/models"
)

type fallbackScorer struct {
	primary  Scorer
	fallback Scorer
}

// WithFallback wraps a scorer so that an empty result triggers one rescore
// with the fallback scorer, same requester and top-k but a cleared query.
// When primary and fallback share a mode the rescore is skipped. A result
// that is still empty becomes ErrEmptyResult; an error inside the fallback
// attempt itself is logged and folded into ErrEmptyResult, since the caller
// already has nothing either way.
func WithFallback(primary, fallback Scorer) Scorer {
	return &fallbackScorer{primary: primary, fallback: fallback}
}

func (f *fallbackScorer) Mode() models.Mode { return f.primary.Mode() }

func (f *fallbackScorer) Score(ctx context.Context, req models.RecommendationRequest) ([]models.MovieRecommendation, error) {
	recs, err := f.primary.Score(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(recs) > 0 {
		return recs, nil
	}

	if f.primary.Mode() != f.fallback.Mode() {
		cleared := req
		cleared.Query = ""
		recs, err = f.fallback.Score(ctx, cleared)
		if err != nil {
			logging.Warn().Err(err).
				Str("mode", string(f.primary.Mode())).
				Msg("Fallback scoring attempt failed")
			return nil, ErrEmptyResult
		}
		if len(recs) > 0 {
			return recs, nil
		}
	}
	return nil, ErrEmptyResult
}
