// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/moviematch/moviematch/internal/logging"
	"github.com/moviematch/moviematch/internal/models"
	"github.com/moviematch/moviematch/internal/queue"
)

// Runner owns the Watermill router with one consumer handler per mode
// topic. Handler success acks the message; an error nacks it for
// redelivery. Panics become errors via the Recoverer middleware.
//
// The router hands each delivered message to its own goroutine, so every
// mode carries a semaphore capping how many jobs execute at once.
type Runner struct {
	router *message.Router
}

func NewRunner(engine *Engine, subscriber message.Subscriber, closeTimeout time.Duration, concurrency int) (*Runner, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: closeTimeout,
	}, logging.NewWatermillAdapter())
	if err != nil {
		return nil, fmt.Errorf("create worker router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)

	for _, mode := range models.Modes {
		slots := make(chan struct{}, concurrency)
		router.AddNoPublisherHandler(
			"worker-"+string(mode),
			queue.TopicForMode(mode),
			subscriber,
			func(msg *message.Message) error {
				slots <- struct{}{}
				defer func() { <-slots }()

				job, err := queue.Unmarshal(msg)
				if err != nil {
					// A malformed envelope never becomes valid; drop it
					// instead of cycling through redelivery.
					logging.Error().
						Err(err).
						Str("message_uuid", msg.UUID).
						Msg("Dropping undecodable job message")
					return nil
				}
				return engine.Execute(msg.Context(), job)
			},
		)
	}

	return &Runner{router: router}, nil
}

// Run starts consuming and blocks until ctx is canceled or the router
// stops. Safe to call once.
func (r *Runner) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running closes once all handlers are subscribed and consuming.
func (r *Runner) Running() <-chan struct{} {
	return r.router.Running()
}

func (r *Runner) Close() error {
	return r.router.Close()
}
