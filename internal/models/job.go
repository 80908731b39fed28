// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package models

import (
	"fmt"
	"time"
)

// JobState is one lifecycle state of a recommendation job.
//
// The state machine is QUEUED -> RUNNING -> {COMPLETED | FAILED}, with the
// informational RETRYING sub-state observable between a failed attempt and
// the next RUNNING. Transitions are monotonic: once a job reaches a terminal
// state it never leaves it.
type JobState string

const (
	// JobQueued means the job has been accepted and published to its mode queue.
	JobQueued JobState = "queued"

	// JobRunning means a worker holds the job's lease and is scoring it.
	JobRunning JobState = "running"

	// JobRetrying means the last scoring attempt failed transiently and the
	// worker is backing off before the next attempt. Informational only; it
	// always resolves to COMPLETED or FAILED.
	JobRetrying JobState = "retry"

	// JobCompleted is the terminal success state. The result is attached.
	JobCompleted JobState = "completed"

	// JobFailed is the terminal failure state. The error text is attached.
	JobFailed JobState = "failed"
)

// Terminal reports whether s is COMPLETED or FAILED.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// stateOrder encodes the monotonic ordering of states. RETRYING and RUNNING
// share an order so a worker may oscillate between them while attempting.
var stateOrder = map[JobState]int{
	JobQueued:    0,
	JobRunning:   1,
	JobRetrying:  1,
	JobCompleted: 2,
	JobFailed:    2,
}

// CanTransition reports whether moving from s to next preserves monotonicity.
// A terminal state accepts no further transitions, not even to itself.
func (s JobState) CanTransition(next JobState) bool {
	from, ok := stateOrder[s]
	if !ok {
		return false
	}
	to, ok := stateOrder[next]
	if !ok {
		return false
	}
	if s.Terminal() {
		return false
	}
	return to >= from
}

// Job is a durable recommendation job. The id is server-generated and opaque
// to callers; it is the only handle the polling API accepts.
type Job struct {
	ID        string                `json:"id"`
	Mode      Mode                  `json:"mode"`
	Request   RecommendationRequest `json:"request"`
	CreatedAt time.Time             `json:"created_at"`
}

// JobStatus is the externally observable view of a job: its current state
// plus the result (COMPLETED) or error text (FAILED).
type JobStatus struct {
	JobID     string                  `json:"job_id"`
	State     JobState                `json:"status"`
	Result    *RecommendationResponse `json:"result,omitempty"`
	Error     string                  `json:"error,omitempty"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// Validate checks that a job envelope is complete enough to execute.
func (j *Job) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job id is empty")
	}
	if !j.Mode.Valid() {
		return fmt.Errorf("job %s: invalid mode %q", j.ID, j.Mode)
	}
	if j.Request.TopK < 1 || j.Request.TopK > MaxTopK {
		return fmt.Errorf("job %s: top_k %d out of range", j.ID, j.Request.TopK)
	}
	return nil
}
