// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package queue

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/moviematch/moviematch/internal/logging"
)

// GoChannelBroker is the in-process broker for single-node deployments and
// tests. Messages survive only as long as the process; durability comes from
// the NATS backend.
type GoChannelBroker struct {
	pubsub *gochannel.GoChannel
}

func NewGoChannelBroker() *GoChannelBroker {
	return &GoChannelBroker{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			// Buffer absorbs submit bursts while workers drain.
			OutputChannelBuffer: 64,
		}, logging.NewWatermillAdapter()),
	}
}

func (b *GoChannelBroker) Enqueue(ctx context.Context, topic string, msg *message.Message) error {
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	return nil
}

func (b *GoChannelBroker) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

func (b *GoChannelBroker) Close() error {
	return b.pubsub.Close()
}
