// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package models

import "testing"

func TestJobStateTransitions(t *testing.T) {
	tests := []struct {
		name string
		from JobState
		to   JobState
		want bool
	}{
		{"queued to running", JobQueued, JobRunning, true},
		{"queued to completed", JobQueued, JobCompleted, true},
		{"running to retry", JobRunning, JobRetrying, true},
		{"retry to running", JobRetrying, JobRunning, true},
		{"running to completed", JobRunning, JobCompleted, true},
		{"retry to failed", JobRetrying, JobFailed, true},
		{"completed to running", JobCompleted, JobRunning, false},
		{"failed to queued", JobFailed, JobQueued, false},
		{"completed to failed", JobCompleted, JobFailed, false},
		{"running to queued", JobRunning, JobQueued, false},
		{"unknown state", JobState("bogus"), JobRunning, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestJobStateTerminal(t *testing.T) {
	if !JobCompleted.Terminal() || !JobFailed.Terminal() {
		t.Error("Expected completed and failed to be terminal")
	}
	for _, s := range []JobState{JobQueued, JobRunning, JobRetrying} {
		if s.Terminal() {
			t.Errorf("Expected %s to be non-terminal", s)
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		parsed, err := ParseMode(string(m))
		if err != nil {
			t.Fatalf("ParseMode(%s) returned error: %v", m, err)
		}
		if parsed != m {
			t.Errorf("ParseMode(%s) = %s", m, parsed)
		}
	}

	if _, err := ParseMode("vibes"); err == nil {
		t.Error("Expected error for unknown mode")
	}
}

func TestClampTopK(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultTopK},
		{-3, DefaultTopK},
		{1, 1},
		{50, 50},
		{51, MaxTopK},
		{10000, MaxTopK},
	}

	for _, tt := range tests {
		req := RecommendationRequest{TopK: tt.in}
		req.ClampTopK()
		if req.TopK != tt.want {
			t.Errorf("ClampTopK(%d) = %d, want %d", tt.in, req.TopK, tt.want)
		}
	}
}

func TestJobValidate(t *testing.T) {
	valid := Job{ID: "j1", Mode: ModeNLP, Request: RecommendationRequest{TopK: 5}}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid job, got %v", err)
	}

	missing := Job{Mode: ModeNLP, Request: RecommendationRequest{TopK: 5}}
	if err := missing.Validate(); err == nil {
		t.Error("Expected error for missing id")
	}

	badMode := Job{ID: "j2", Mode: Mode("bogus"), Request: RecommendationRequest{TopK: 5}}
	if err := badMode.Validate(); err == nil {
		t.Error("Expected error for invalid mode")
	}

	badTopK := Job{ID: "j3", Mode: ModeMood, Request: RecommendationRequest{TopK: 0}}
	if err := badTopK.Validate(); err == nil {
		t.Error("Expected error for out-of-range top_k")
	}
}
