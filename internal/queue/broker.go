// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/moviematch/moviematch/internal/config"
	"github.com/moviematch/moviematch/internal/logging"
)

// ErrBrokerUnavailable wraps publish failures so the API layer can map them
// to a service-unavailable response without knowing the backend.
var ErrBrokerUnavailable = errors.New("job broker unavailable")

// Broker is the durable job transport. A subscription channel delivers
// leased messages; the consumer must Ack or Nack every one. Both sides are
// safe for concurrent use.
type Broker interface {
	// Enqueue publishes a job message to a mode topic.
	Enqueue(ctx context.Context, topic string, msg *message.Message) error

	// Subscribe returns the stream of leased messages for a topic. The
	// channel closes when ctx is canceled or the broker closes.
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)

	Close() error
}

// NewBroker builds the configured broker backend.
func NewBroker(cfg *config.BrokerConfig) (Broker, error) {
	switch cfg.Backend {
	case "gochannel":
		return NewGoChannelBroker(), nil
	case "nats":
		broker, err := NewNATSBroker(&cfg.NATS)
		if err != nil {
			return nil, fmt.Errorf("create nats broker: %w", err)
		}
		return broker, nil
	default:
		return nil, fmt.Errorf("unknown broker backend %q", cfg.Backend)
	}
}

// SubscriberFromBroker adapts a Broker to watermill's message.Subscriber so
// it can feed a router.
type brokerSubscriber struct {
	broker Broker
}

// AsSubscriber exposes the broker's consume side as a message.Subscriber.
func AsSubscriber(b Broker) message.Subscriber {
	return &brokerSubscriber{broker: b}
}

func (s *brokerSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	logging.Debug().Str("topic", topic).Msg("Subscribing to job topic")
	return s.broker.Subscribe(ctx, topic)
}

func (s *brokerSubscriber) Close() error {
	// Broker lifetime is owned by the supervisor, not the router.
	return nil
}
