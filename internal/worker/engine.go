// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

// Package worker consumes the per-mode job queues and executes jobs:
// score, fall back, persist, cache, report terminal state.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/moviematch/moviematch/internal/cache"
	"github.com/moviematch/moviematch/internal/config"
	"github.com/moviematch/moviematch/internal/logging"
	"github.com/moviematch/moviematch/internal/metrics"
	"github.com/moviematch/moviematch/internal/models"
	"github.com/moviematch/moviematch/internal/queue"
	"github.com/moviematch/moviematch/internal/recommend"
)

// Persister is the durable write the engine performs on success.
// *database.DB satisfies it.
type Persister interface {
	PersistRecommendation(ctx context.Context, jobID string, userID int64, mode models.Mode, payload string, results []models.MovieRecommendation) error
}

// Engine executes one job at a time: mark RUNNING, run the retry-wrapped
// fallback-wrapped scorer, persist transactionally, populate the result
// cache, mark terminal. Persistence runs through a circuit breaker so a
// down store sheds load fast.
type Engine struct {
	registry *recommend.Registry
	store    queue.JobStore
	db       Persister
	cache    cache.Cacher
	cacheTTL time.Duration

	retryAttempts int
	retryBackoff  time.Duration
	breaker       *gobreaker.CircuitBreaker[any]
}

func NewEngine(registry *recommend.Registry, store queue.JobStore, db Persister, cacher cache.Cacher, cfg *config.Config) *Engine {
	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "recommendation-store",
		Timeout: cfg.Worker.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Worker.BreakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Store circuit breaker state change")
		},
	})

	return &Engine{
		registry:      registry,
		store:         store,
		db:            db,
		cache:         cacher,
		cacheTTL:      cfg.Cache.TTL,
		retryAttempts: cfg.Worker.RetryAttempts,
		retryBackoff:  cfg.Worker.RetryBackoff,
		breaker:       breaker,
	}
}

// Execute runs one delivered job to a terminal state.
//
// A nil return acks the message: either the job completed, or it failed
// terminally and the FAILED record is written. A non-nil return nacks for
// redelivery; that path is reserved for failures where the outcome could
// not be recorded at all.
func (e *Engine) Execute(ctx context.Context, job *models.Job) error {
	start := time.Now()

	if err := e.markRunning(ctx, job); err != nil {
		if errors.Is(err, queue.ErrInvalidTransition) {
			// Redelivery of a job that already reached a terminal state.
			logging.Info().Str("job_id", job.ID).Msg("Skipping already-terminal job")
			return nil
		}
		return err
	}

	scorer, ok := e.registry.For(job.Mode)
	if !ok {
		return e.fail(ctx, job, start, fmt.Errorf("no scorer for mode %q", job.Mode))
	}

	collaborative, _ := e.registry.For(models.ModeCollaborative)
	scorer = recommend.WithFallback(scorer, collaborative)
	notify := func(attempt int, err error) {
		metrics.RecordScoringRetry(string(job.Mode))
		logging.Warn().
			Err(err).
			Str("job_id", job.ID).
			Int("attempt", attempt).
			Msg("Scoring attempt failed, backing off")
		// Pollers see RETRY for the whole backoff window.
		if trErr := e.store.Transition(ctx, job.ID, models.JobRetrying, nil, ""); trErr != nil {
			logging.Error().Err(trErr).Str("job_id", job.ID).Msg("Failed to record retry state")
		} else {
			metrics.RecordJobTransition(string(job.Mode), string(models.JobRetrying))
		}
	}
	resume := func(attempt int) {
		if trErr := e.store.Transition(ctx, job.ID, models.JobRunning, nil, ""); trErr != nil {
			logging.Error().Err(trErr).Str("job_id", job.ID).Msg("Failed to record running state")
		}
	}
	scorer = recommend.WithRetry(scorer, e.retryAttempts, e.retryBackoff, notify, resume)

	recs, err := scorer.Score(ctx, job.Request)
	if err != nil {
		return e.fail(ctx, job, start, err)
	}

	payload, err := json.Marshal(job.Request)
	if err != nil {
		return e.fail(ctx, job, start, fmt.Errorf("marshal request payload: %w", err))
	}
	_, err = e.breaker.Execute(func() (any, error) {
		return nil, e.db.PersistRecommendation(ctx, job.ID, job.Request.UserID, job.Mode, string(payload), recs)
	})
	if err != nil {
		// Persist failures are transient until proven otherwise; nack and
		// let the broker redeliver. The write is idempotent per job id, so
		// redoing it on redelivery is safe.
		logging.Error().Err(err).Str("job_id", job.ID).Msg("Persist failed, requesting redelivery")
		return fmt.Errorf("persist job %s: %w", job.ID, err)
	}

	response := &models.RecommendationResponse{
		Mode:            job.Mode,
		Recommendations: recs,
		TraceID:         uuid.NewString(),
	}
	e.populateCache(ctx, job, response)

	if err := e.store.Transition(ctx, job.ID, models.JobCompleted, response, ""); err != nil {
		return fmt.Errorf("record completed job %s: %w", job.ID, err)
	}
	metrics.RecordJobTransition(string(job.Mode), string(models.JobCompleted))
	metrics.RecordScoring(string(job.Mode), time.Since(start), true)

	logging.Info().
		Str("job_id", job.ID).
		Str("mode", string(job.Mode)).
		Int("results", len(recs)).
		Dur("elapsed", time.Since(start)).
		Msg("Job completed")
	return nil
}

// markRunning moves the job to RUNNING, creating the record first when the
// status store lost it (e.g. redelivery after a restart with the memory
// backend).
func (e *Engine) markRunning(ctx context.Context, job *models.Job) error {
	err := e.store.Transition(ctx, job.ID, models.JobRunning, nil, "")
	if errors.Is(err, queue.ErrJobNotFound) {
		if createErr := e.store.Create(ctx, job, models.JobRunning, nil); createErr != nil {
			return fmt.Errorf("recreate job record %s: %w", job.ID, createErr)
		}
		err = nil
	}
	if err == nil {
		metrics.RecordJobTransition(string(job.Mode), string(models.JobRunning))
	}
	return err
}

// fail records the terminal FAILED state. The error text is the job's
// user-visible error; the message is still acked because the outcome is
// durable.
func (e *Engine) fail(ctx context.Context, job *models.Job, start time.Time, cause error) error {
	if err := e.store.Transition(ctx, job.ID, models.JobFailed, nil, cause.Error()); err != nil {
		return fmt.Errorf("record failed job %s: %w", job.ID, err)
	}
	metrics.RecordJobTransition(string(job.Mode), string(models.JobFailed))
	metrics.RecordScoring(string(job.Mode), time.Since(start), false)

	logging.Warn().
		Err(cause).
		Str("job_id", job.ID).
		Str("mode", string(job.Mode)).
		Msg("Job failed")
	return nil
}

func (e *Engine) populateCache(ctx context.Context, job *models.Job, response *models.RecommendationResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Str("job_id", job.ID).Msg("Failed to marshal response for cache")
		return
	}
	key := cache.Fingerprint(job.Mode, job.Request.UserID, job.Request.Query, job.Request.TopK)
	if err := e.cache.Set(ctx, key, data, e.cacheTTL); err != nil {
		// Cache is an overlay; a failed write only costs a recomputation.
		logging.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to populate result cache")
	}
}
