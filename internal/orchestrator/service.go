// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

// Package orchestrator is the submit/poll boundary between the HTTP API and
// the job pipeline. It resolves the requester, consults the result cache and
// either answers immediately with a synthetic completed job or admits a new
// job to the queue.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/moviematch/moviematch/internal/auth"
	"github.com/moviematch/moviematch/internal/cache"
	"github.com/moviematch/moviematch/internal/logging"
	"github.com/moviematch/moviematch/internal/metrics"
	"github.com/moviematch/moviematch/internal/models"
)

// JobDispatcher is the producer-side queue facade the orchestrator drives.
// *queue.Dispatcher satisfies it.
type JobDispatcher interface {
	Submit(ctx context.Context, mode models.Mode, req models.RecommendationRequest) (string, error)
	RecordCompleted(ctx context.Context, mode models.Mode, req models.RecommendationRequest, result *models.RecommendationResponse) (string, error)
	Status(ctx context.Context, jobID string) (*models.JobStatus, error)
}

// Service coordinates cache, dispatcher and principal resolution.
type Service struct {
	dispatcher JobDispatcher
	cache      cache.Cacher
}

func NewService(dispatcher JobDispatcher, cacher cache.Cacher) *Service {
	return &Service{dispatcher: dispatcher, cache: cacher}
}

// Submit admits a recommendation request. On a cache hit the response is
// returned as an already-completed job without touching the queue; on a
// miss the job is enqueued and comes back QUEUED.
//
// The requester id comes from the request body when present, otherwise from
// the authenticated principal.
func (s *Service) Submit(ctx context.Context, mode models.Mode, req models.RecommendationRequest, principal auth.Principal) (*models.JobStatus, error) {
	if req.UserID == 0 {
		req.UserID = principal.UserID
	}
	req.ClampTopK()

	if status, ok := s.fromCache(ctx, mode, req); ok {
		return status, nil
	}

	jobID, err := s.dispatcher.Submit(ctx, mode, req)
	if err != nil {
		return nil, err
	}
	status, err := s.dispatcher.Status(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("read back submitted job %s: %w", jobID, err)
	}
	return status, nil
}

// fromCache answers a submit from the result cache when possible. Cache
// backend failures degrade to a miss; the queue path always works.
func (s *Service) fromCache(ctx context.Context, mode models.Mode, req models.RecommendationRequest) (*models.JobStatus, bool) {
	key := cache.Fingerprint(mode, req.UserID, req.Query, req.TopK)
	data, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Result cache lookup failed, treating as miss")
		metrics.RecordCacheLookup(false)
		return nil, false
	}
	metrics.RecordCacheLookup(hit)
	if !hit {
		return nil, false
	}

	var response models.RecommendationResponse
	if err := json.Unmarshal(data, &response); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		if delErr := s.cache.Delete(ctx, key); delErr != nil {
			logging.Debug().Err(delErr).Str("key", key).Msg("Failed to delete bad cache entry")
		}
		return nil, false
	}

	jobID, err := s.dispatcher.RecordCompleted(ctx, mode, req, &response)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to record synthetic job for cache hit")
		return nil, false
	}

	status, err := s.dispatcher.Status(ctx, jobID)
	if err != nil {
		logging.Warn().Err(err).Str("job_id", jobID).Msg("Failed to read back synthetic job")
		return nil, false
	}
	logging.Debug().Str("job_id", jobID).Str("key", key).Msg("Submit answered from result cache")
	return status, true
}

// Job returns the current status of a job by id.
func (s *Service) Job(ctx context.Context, jobID string) (*models.JobStatus, error) {
	return s.dispatcher.Status(ctx, jobID)
}
