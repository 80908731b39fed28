// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package recommend

import (
	"context"
	"sort"
	"strings"

	"github.com/moviematch/moviematch/internal/database"
	"github.com/moviematch/moviematch/internal/models"
)

type fakeMovie struct {
	id       int64
	title    string
	genres   string
	overview string
}

type fakeRating struct {
	userID  int64
	movieID int64
	rating  float64
}

// fakeCatalog is a deterministic in-memory CatalogReader. It counts calls so
// tests can assert the cache short-circuits scoring, and can be told to fail
// its next N calls to exercise the retry decorator.
type fakeCatalog struct {
	movies  []fakeMovie
	ratings []fakeRating

	calls    int
	failNext int
	failErr  error
}

func (f *fakeCatalog) checkFail() error {
	f.calls++
	if f.failNext > 0 {
		f.failNext--
		return f.failErr
	}
	return nil
}

func (f *fakeCatalog) mean(movieID int64) (float64, bool) {
	var sum float64
	var n int
	for _, r := range f.ratings {
		if r.movieID == movieID {
			sum += r.rating
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func (f *fakeCatalog) ratedBy(userID int64) map[int64]bool {
	rated := make(map[int64]bool)
	for _, r := range f.ratings {
		if r.userID == userID {
			rated[r.movieID] = true
		}
	}
	return rated
}

func (f *fakeCatalog) TopRated(ctx context.Context, excludeUserID int64, limit int) ([]database.ScoredMovie, error) {
	if err := f.checkFail(); err != nil {
		return nil, err
	}
	rated := map[int64]bool{}
	if excludeUserID != 0 {
		rated = f.ratedBy(excludeUserID)
	}
	var out []database.ScoredMovie
	for _, m := range f.movies {
		mean, has := f.mean(m.id)
		if !has || rated[m.id] {
			continue
		}
		out = append(out, database.ScoredMovie{ID: m.id, Title: m.title, MeanRating: mean, HasRating: true})
	}
	sortScored(out)
	return clip(out, limit), nil
}

func (f *fakeCatalog) SearchText(ctx context.Context, text string, limit int) ([]database.ScoredMovie, error) {
	if err := f.checkFail(); err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(text))
	var out []database.ScoredMovie
	for _, m := range f.movies {
		if !strings.Contains(strings.ToLower(m.title), needle) &&
			!strings.Contains(strings.ToLower(m.overview), needle) {
			continue
		}
		mean, has := f.mean(m.id)
		out = append(out, database.ScoredMovie{ID: m.id, Title: m.title, MeanRating: mean, HasRating: has})
	}
	sortScored(out)
	return clip(out, limit), nil
}

func (f *fakeCatalog) SearchGenres(ctx context.Context, genres []string, limit int) ([]database.ScoredMovie, error) {
	if err := f.checkFail(); err != nil {
		return nil, err
	}
	var out []database.ScoredMovie
	for _, m := range f.movies {
		tags := strings.ToLower(m.genres)
		matched := false
		for _, g := range genres {
			if strings.Contains(tags, strings.ToLower(g)) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		mean, has := f.mean(m.id)
		out = append(out, database.ScoredMovie{ID: m.id, Title: m.title, MeanRating: mean, HasRating: has})
	}
	sortScored(out)
	return clip(out, limit), nil
}

func sortScored(movies []database.ScoredMovie) {
	sort.SliceStable(movies, func(i, j int) bool {
		if movies[i].HasRating != movies[j].HasRating {
			return movies[i].HasRating
		}
		if movies[i].MeanRating != movies[j].MeanRating {
			return movies[i].MeanRating > movies[j].MeanRating
		}
		return movies[i].ID < movies[j].ID
	})
}

func clip(movies []database.ScoredMovie, limit int) []database.ScoredMovie {
	if len(movies) > limit {
		return movies[:limit]
	}
	return movies
}

// newFixtureCatalog reproduces the reference scenario: movie 1 rated 5 and 4,
// movie 3 rated 5, movie 4 rated 3.5; user 1 has rated movies 1 and 2.
func newFixtureCatalog() *fakeCatalog {
	return &fakeCatalog{
		movies: []fakeMovie{
			{1, "First Light", "drama", "A dawn vigil on a northern coast."},
			{2, "Second Wind", "comedy", "A retired sprinter coaches a rival town."},
			{3, "Third Act", "drama,romance", "A playwright rewrites her own ending."},
			{4, "Fourth Wall", "comedy,mystery", "A stagehand keeps seeing the audience."},
			{5, "Fifth Season", "horror", "Winter refuses to leave one valley."},
		},
		ratings: []fakeRating{
			{2, 1, 5.0}, {3, 1, 4.0},
			{1, 1, 4.5}, {1, 2, 4.0},
			{2, 3, 5.0},
			{3, 4, 3.5},
		},
	}
}

func recIDs(recs []models.MovieRecommendation) []int64 {
	ids := make([]int64, len(recs))
	for i, r := range recs {
		ids[i] = r.MovieID
	}
	return ids
}

type stubScorer struct {
	mode models.Mode
	fn   func(ctx context.Context, req models.RecommendationRequest) ([]models.MovieRecommendation, error)
}

func (s *stubScorer) Mode() models.Mode { return s.mode }

func (s *stubScorer) Score(ctx context.Context, req models.RecommendationRequest) ([]models.MovieRecommendation, error) {
	return s.fn(ctx, req)
}
