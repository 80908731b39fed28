// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/moviematch/moviematch/internal/logging"
	"github.com/moviematch/moviematch/internal/metrics"
	"github.com/moviematch/moviematch/internal/models"
)

// Dispatcher is the producer-side facade: it turns an accepted request into
// a durable QUEUED job on the right mode topic.
type Dispatcher struct {
	broker Broker
	store  JobStore
}

func NewDispatcher(broker Broker, store JobStore) *Dispatcher {
	return &Dispatcher{broker: broker, store: store}
}

// Submit creates a job for the request and publishes it. The QUEUED record
// is written before the publish so a worker can never observe a missing
// record; if the publish then fails the record is removed again and the
// caller gets ErrBrokerUnavailable.
func (d *Dispatcher) Submit(ctx context.Context, mode models.Mode, req models.RecommendationRequest) (string, error) {
	req.ClampTopK()
	job := &models.Job{
		ID:        uuid.NewString(),
		Mode:      mode,
		Request:   req,
		CreatedAt: time.Now().UTC(),
	}
	if err := job.Validate(); err != nil {
		return "", fmt.Errorf("validate job: %w", err)
	}

	msg, err := Marshal(job)
	if err != nil {
		return "", err
	}

	if err := d.store.Create(ctx, job, models.JobQueued, nil); err != nil {
		return "", fmt.Errorf("record queued job: %w", err)
	}

	if err := d.broker.Enqueue(ctx, TopicForMode(mode), msg); err != nil {
		// Undo the record: a job that never reached the queue must not be
		// observable as QUEUED forever.
		if delErr := d.store.Delete(ctx, job.ID); delErr != nil {
			logging.Error().Err(delErr).Str("job_id", job.ID).Msg("Failed to remove unpublished job record")
		}
		metrics.RecordQueuePublishFailure(string(mode))
		return "", err
	}

	metrics.RecordJobSubmitted(string(mode))
	logging.Debug().
		Str("job_id", job.ID).
		Str("mode", string(mode)).
		Int("top_k", req.TopK).
		Msg("Job enqueued")
	return job.ID, nil
}

// RecordCompleted writes a synthetic already-terminal job, used when a cache
// hit answers a submit without touching the queue.
func (d *Dispatcher) RecordCompleted(ctx context.Context, mode models.Mode, req models.RecommendationRequest, result *models.RecommendationResponse) (string, error) {
	job := &models.Job{
		ID:        uuid.NewString(),
		Mode:      mode,
		Request:   req,
		CreatedAt: time.Now().UTC(),
	}
	if err := d.store.Create(ctx, job, models.JobCompleted, result); err != nil {
		return "", fmt.Errorf("record completed job: %w", err)
	}
	return job.ID, nil
}

// Status returns the current lifecycle view of a job.
func (d *Dispatcher) Status(ctx context.Context, jobID string) (*models.JobStatus, error) {
	return d.store.Get(ctx, jobID)
}
