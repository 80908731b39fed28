// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package models

import "fmt"

// Mode identifies a recommendation strategy.
type Mode string

const (
	// ModeCollaborative ranks the catalog by mean historical rating,
	// excluding titles the requesting user has already rated.
	ModeCollaborative Mode = "collaborative"

	// ModeNLP ranks titles whose title or overview contains the query
	// substring, delegating to collaborative when the query is empty or
	// matches nothing.
	ModeNLP Mode = "nlp"

	// ModeMood maps a mood keyword to genre tags and ranks titles carrying
	// any of those tags.
	ModeMood Mode = "mood"
)

// Modes lists every valid recommendation mode.
var Modes = []Mode{ModeCollaborative, ModeNLP, ModeMood}

// ParseMode converts a string to a Mode.
// Returns an error for anything outside the fixed mode set.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCollaborative, ModeNLP, ModeMood:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown recommendation mode %q", s)
	}
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	return string(m)
}

// Valid reports whether m is one of the fixed modes.
func (m Mode) Valid() bool {
	_, err := ParseMode(string(m))
	return err == nil
}

// TopK bounds for RecommendationRequest.
const (
	// DefaultTopK is the result-count bound applied when the caller omits top_k.
	DefaultTopK = 10

	// MaxTopK is the upper bound a caller-provided top_k is clamped to.
	MaxTopK = 50
)

// RecommendationRequest is the caller input for one recommendation job.
// UserID is optional in the request body; the orchestrator resolves it from
// the authenticated principal before a job is admitted.
type RecommendationRequest struct {
	UserID int64  `json:"user_id,omitempty"`
	Query  string `json:"query,omitempty"`
	TopK   int    `json:"top_k,omitempty" validate:"omitempty,min=1,max=50"`
}

// ClampTopK normalizes the result-count bound in place and returns it: zero
// becomes DefaultTopK, anything above MaxTopK is clamped down.
func (r *RecommendationRequest) ClampTopK() int {
	if r.TopK <= 0 {
		r.TopK = DefaultTopK
	}
	if r.TopK > MaxTopK {
		r.TopK = MaxTopK
	}
	return r.TopK
}

// MovieRecommendation is one ranked result row.
// Within a result set ranks are contiguous from 1 and scores are
// non-increasing with rank, ties broken by ascending movie id.
type MovieRecommendation struct {
	MovieID int64   `json:"movie_id"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
	Rank    int     `json:"rank"`
}

// RecommendationResponse is the terminal payload of a completed job.
type RecommendationResponse struct {
	Mode            Mode                  `json:"mode"`
	Recommendations []MovieRecommendation `json:"recommendations"`
	TraceID         string                `json:"trace_id"`
}
