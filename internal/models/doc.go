// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

// Package models defines the shared data structures for MovieMatch.
//
// The package contains three groups of types:
//
// Recommendation domain:
//   - Mode: the three recommendation strategies (collaborative, nlp, mood)
//   - RecommendationRequest: caller input (user, query, top_k)
//   - MovieRecommendation: one ranked result row
//   - RecommendationResponse: the terminal payload of a completed job
//
// Job lifecycle:
//   - JobState: the QUEUED -> RUNNING -> {COMPLETED|FAILED} state machine,
//     with the informational RETRYING sub-state
//   - Job: a submitted recommendation job
//   - JobStatus: the externally observable view of a job
//
// HTTP envelope:
//   - APIResponse: standardized response wrapper
//   - APIError: structured error details
//
// All types serialize with goccy/go-json and carry no behavior beyond
// validation and state-transition checks, so every other package can depend
// on models without import cycles.
package models
