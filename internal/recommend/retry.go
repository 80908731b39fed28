// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/moviematch/moviematch/internal/models"
)

// RetryNotify is called before each backoff sleep with the attempt number
// that just failed and its error. The worker uses it to flip the job status
// to RETRY for the whole backoff window.
type RetryNotify func(attempt int, err error)

// RetryResume is called after the backoff sleep, right before the next
// attempt starts. The worker uses it to flip the job status back to RUNNING.
type RetryResume func(attempt int)

type retryScorer struct {
	inner       Scorer
	maxAttempts int
	baseBackoff time.Duration
	notify      RetryNotify
	resume      RetryResume
}

// WithRetry wraps a scorer in a bounded retry loop with exponential backoff.
// ErrEmptyResult is a terminal outcome and is never retried; context
// cancellation stops the loop. The last attempt's error is returned when the
// budget is exhausted. notify and resume may be nil.
func WithRetry(inner Scorer, maxAttempts int, baseBackoff time.Duration, notify RetryNotify, resume RetryResume) Scorer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &retryScorer{
		inner:       inner,
		maxAttempts: maxAttempts,
		baseBackoff: baseBackoff,
		notify:      notify,
		resume:      resume,
	}
}

func (r *retryScorer) Mode() models.Mode { return r.inner.Mode() }

func (r *retryScorer) Score(ctx context.Context, req models.RecommendationRequest) ([]models.MovieRecommendation, error) {
	var lastErr error
	backoff := r.baseBackoff

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		recs, err := r.inner.Score(ctx, req)
		if err == nil {
			return recs, nil
		}
		if errors.Is(err, ErrEmptyResult) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		lastErr = err

		if attempt == r.maxAttempts {
			break
		}
		if r.notify != nil {
			r.notify(attempt, err)
		}
		if backoff > 0 {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
			backoff *= 2
		}
		if r.resume != nil {
			r.resume(attempt + 1)
		}
	}
	return nil, lastErr
}
