// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/moviematch/moviematch/internal/logging"
)

// JobConsumer matches the worker.Runner lifecycle: Run blocks until the
// context is canceled or the underlying router stops.
type JobConsumer interface {
	Run(ctx context.Context) error
	Running() <-chan struct{}
	Close() error
}

// ConsumerFactory builds a fresh job consumer. A watermill router cannot be
// rerun once stopped, so each supervision cycle needs a new instance.
type ConsumerFactory func() (JobConsumer, error)

// WorkerService supervises the job consumers. When the router exits with an
// error, suture restarts the service, which rebuilds the consumer and
// resumes from the broker's unacknowledged messages.
type WorkerService struct {
	build ConsumerFactory
}

// NewWorkerService wraps a consumer factory for supervision.
func NewWorkerService(build ConsumerFactory) *WorkerService {
	return &WorkerService{build: build}
}

// Serve implements suture.Service.
func (s *WorkerService) Serve(ctx context.Context) error {
	consumer, err := s.build()
	if err != nil {
		return fmt.Errorf("build job consumer: %w", err)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			logging.Warn().Err(err).Msg("Closing job consumer failed")
		}
	}()

	go func() {
		select {
		case <-consumer.Running():
			logging.Info().Msg("Worker consumers running")
		case <-ctx.Done():
		}
	}()

	err = consumer.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return ctx.Err()
}

// String identifies the service in suture's log output.
func (s *WorkerService) String() string {
	return "job-workers"
}
