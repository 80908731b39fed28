// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package recommend

import (
	"context"
	"reflect"
	"testing"

	"github.com/moviematch/moviematch/internal/models"
)

func TestCollaborativeExcludesRatedAndRanksByMean(t *testing.T) {
	catalog := newFixtureCatalog()
	scorer := NewCollaborativeScorer(catalog)

	recs, err := scorer.Score(context.Background(), models.RecommendationRequest{UserID: 1, TopK: 3})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	// Movie 3 (mean 5.0) ranks first; movies 1 and 2 are excluded because
	// user 1 rated them; movie 5 is unrated and never qualifies.
	want := []int64{3, 4}
	if got := recIDs(recs); !reflect.DeepEqual(got, want) {
		t.Fatalf("Score() ids = %v, want %v", got, want)
	}
	if recs[0].Score != 5.0 {
		t.Errorf("top score = %v, want 5.0", recs[0].Score)
	}
	if recs[0].Reason != "Collaborative score from user ratings" {
		t.Errorf("reason = %q", recs[0].Reason)
	}
	for i, r := range recs {
		if r.Rank != i+1 {
			t.Errorf("recs[%d].Rank = %d, want %d", i, r.Rank, i+1)
		}
	}
}

func TestCollaborativeWidensWhenExclusionEmptiesCatalog(t *testing.T) {
	catalog := &fakeCatalog{
		movies:  []fakeMovie{{1, "Only One", "drama", ""}},
		ratings: []fakeRating{{1, 1, 4.0}},
	}
	scorer := NewCollaborativeScorer(catalog)

	recs, err := scorer.Score(context.Background(), models.RecommendationRequest{UserID: 1, TopK: 5})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if got := recIDs(recs); !reflect.DeepEqual(got, []int64{1}) {
		t.Fatalf("widened Score() ids = %v, want [1]", got)
	}
}

func TestCollaborativeRespectsTopK(t *testing.T) {
	catalog := newFixtureCatalog()
	scorer := NewCollaborativeScorer(catalog)

	recs, err := scorer.Score(context.Background(), models.RecommendationRequest{UserID: 0, TopK: 2})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("len(recs) = %d, want 2", len(recs))
	}
}

func TestTextMatchEmptyQueryDelegatesToCollaborative(t *testing.T) {
	catalog := newFixtureCatalog()
	collaborative := NewCollaborativeScorer(catalog)
	scorer := NewTextMatchScorer(catalog, collaborative)
	req := models.RecommendationRequest{UserID: 1, Query: "   ", TopK: 3}

	got, err := scorer.Score(context.Background(), req)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	want, err := collaborative.Score(context.Background(), req)
	if err != nil {
		t.Fatalf("collaborative Score() error = %v", err)
	}
	if !reflect.DeepEqual(recIDs(got), recIDs(want)) {
		t.Errorf("delegated ids = %v, collaborative ids = %v", recIDs(got), recIDs(want))
	}
}

func TestTextMatchNoMatchEqualsCollaborative(t *testing.T) {
	catalog := newFixtureCatalog()
	collaborative := NewCollaborativeScorer(catalog)
	scorer := NewTextMatchScorer(catalog, collaborative)

	got, err := scorer.Score(context.Background(), models.RecommendationRequest{UserID: 1, Query: "zzzz-no-match", TopK: 2})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	want, err := collaborative.Score(context.Background(), models.RecommendationRequest{UserID: 1, TopK: 2})
	if err != nil {
		t.Fatalf("collaborative Score() error = %v", err)
	}
	if !reflect.DeepEqual(recIDs(got), recIDs(want)) {
		t.Errorf("no-match ids = %v, collaborative ids = %v", recIDs(got), recIDs(want))
	}
}

func TestTextMatchFindsTitleAndOverview(t *testing.T) {
	catalog := newFixtureCatalog()
	scorer := NewTextMatchScorer(catalog, NewCollaborativeScorer(catalog))

	recs, err := scorer.Score(context.Background(), models.RecommendationRequest{UserID: 1, Query: "THIRD", TopK: 5})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if got := recIDs(recs); !reflect.DeepEqual(got, []int64{3}) {
		t.Fatalf("Score(THIRD) ids = %v, want [3]", got)
	}
	if recs[0].Reason != "NLP text match for query 'THIRD'" {
		t.Errorf("reason = %q", recs[0].Reason)
	}
}

func TestTextMatchRatedSortBeforeUnrated(t *testing.T) {
	catalog := newFixtureCatalog()
	scorer := NewTextMatchScorer(catalog, NewCollaborativeScorer(catalog))

	// Every fixture title contains a digit word; "i" matches all five. The
	// unrated movie 5 must come last.
	recs, err := scorer.Score(context.Background(), models.RecommendationRequest{UserID: 0, Query: "i", TopK: 10})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if len(recs) != 5 {
		t.Fatalf("len(recs) = %d, want 5", len(recs))
	}
	if recs[len(recs)-1].MovieID != 5 {
		t.Errorf("last id = %d, want unrated movie 5", recs[len(recs)-1].MovieID)
	}
}

func TestMoodMapsKeywordToGenres(t *testing.T) {
	catalog := newFixtureCatalog()
	scorer := NewMoodScorer(catalog, NewCollaborativeScorer(catalog))

	// "sad" maps to drama and romance: movies 1, 3 (rated, mean desc) then
	// nothing else tagged.
	recs, err := scorer.Score(context.Background(), models.RecommendationRequest{UserID: 0, Query: "sad", TopK: 10})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if got := recIDs(recs); !reflect.DeepEqual(got, []int64{3, 1}) {
		t.Fatalf("Score(sad) ids = %v, want [3 1]", got)
	}
	if recs[0].Reason != "Mood-to-genre match for 'sad'" {
		t.Errorf("reason = %q", recs[0].Reason)
	}
}

func TestMoodUnknownKeywordMatchesNeutral(t *testing.T) {
	catalog := newFixtureCatalog()
	scorer := NewMoodScorer(catalog, NewCollaborativeScorer(catalog))
	ctx := context.Background()

	unknown, err := scorer.Score(ctx, models.RecommendationRequest{UserID: 1, Query: "perplexed", TopK: 5})
	if err != nil {
		t.Fatalf("Score(perplexed) error = %v", err)
	}
	neutral, err := scorer.Score(ctx, models.RecommendationRequest{UserID: 1, Query: "neutral", TopK: 5})
	if err != nil {
		t.Fatalf("Score(neutral) error = %v", err)
	}
	if !reflect.DeepEqual(recIDs(unknown), recIDs(neutral)) {
		t.Errorf("unknown mood ids = %v, neutral ids = %v", recIDs(unknown), recIDs(neutral))
	}
}

func TestMoodEmptyQueryUsesNeutral(t *testing.T) {
	catalog := newFixtureCatalog()
	scorer := NewMoodScorer(catalog, NewCollaborativeScorer(catalog))

	recs, err := scorer.Score(context.Background(), models.RecommendationRequest{UserID: 0, TopK: 10})
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("neutral mood returned no movies")
	}
	if recs[0].Reason != "Mood-to-genre match for 'neutral'" {
		t.Errorf("reason = %q", recs[0].Reason)
	}
}

func TestRegistryCoversAllModes(t *testing.T) {
	registry := NewRegistry(newFixtureCatalog())

	for _, mode := range []models.Mode{models.ModeCollaborative, models.ModeNLP, models.ModeMood} {
		scorer, ok := registry.For(mode)
		if !ok {
			t.Errorf("For(%s) not found", mode)
			continue
		}
		if scorer.Mode() != mode {
			t.Errorf("For(%s).Mode() = %s", mode, scorer.Mode())
		}
	}
	if _, ok := registry.For(models.Mode("psychic")); ok {
		t.Error("For(psychic) = ok, want miss")
	}
}
