// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/moviematch/moviematch/internal/config"
	"github.com/moviematch/moviematch/internal/models"
)

var (
	// ErrJobNotFound is returned when a job id is unknown or its terminal
	// record has expired.
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidTransition is returned when a state change would violate
	// the monotonic lifecycle.
	ErrInvalidTransition = errors.New("invalid job state transition")

	// ErrJobExists is returned when Create sees a duplicate job id.
	ErrJobExists = errors.New("job already exists")
)

// JobStore tracks the observable lifecycle of every job. Terminal records
// expire after the configured TTL; the durable audit trail lives in the
// persistence store, not here.
type JobStore interface {
	// Create records a new job in the given initial state, usually QUEUED.
	// A cache hit records a synthetic job directly as COMPLETED.
	Create(ctx context.Context, job *models.Job, state models.JobState, result *models.RecommendationResponse) error

	// Transition moves a job to a new state, enforcing monotonicity.
	// result is attached on COMPLETED, errText on FAILED.
	Transition(ctx context.Context, jobID string, to models.JobState, result *models.RecommendationResponse, errText string) error

	// Get returns the current status of a job.
	Get(ctx context.Context, jobID string) (*models.JobStatus, error)

	// Delete removes a record outright. Used to undo a Create when the
	// subsequent publish fails, so a never-enqueued job is not observable.
	Delete(ctx context.Context, jobID string) error

	Close() error
}

// NewJobStore builds the configured store backend.
func NewJobStore(cfg *config.JobStoreConfig) (JobStore, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryJobStore(cfg.StatusTTL), nil
	case "badger":
		store, err := NewBadgerJobStore(cfg.Path, cfg.StatusTTL)
		if err != nil {
			return nil, fmt.Errorf("create badger job store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown jobstore backend %q", cfg.Backend)
	}
}
