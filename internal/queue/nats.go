// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/moviematch/moviematch/internal/config"
	"github.com/moviematch/moviematch/internal/logging"
)

// NATSBroker is the durable JetStream-backed broker. The job stream is
// provisioned at startup; publishes run through a circuit breaker so a dead
// broker fails submit calls fast instead of piling up timeouts.
type NATSBroker struct {
	cfg        config.NATSConfig
	embedded   *server.Server
	conn       *natsgo.Conn
	publisher  message.Publisher
	subscriber message.Subscriber
	breaker    *gobreaker.CircuitBreaker[any]

	mu     sync.RWMutex
	closed bool
}

// NewNATSBroker connects (or starts an embedded server), ensures the job
// stream exists and builds the Watermill publisher and subscriber.
func NewNATSBroker(cfg *config.NATSConfig) (*NATSBroker, error) {
	b := &NATSBroker{cfg: *cfg}

	url := cfg.URL
	if cfg.EmbeddedServer {
		ns, err := startEmbeddedServer(cfg)
		if err != nil {
			return nil, err
		}
		b.embedded = ns
		url = ns.ClientURL()
	}

	if err := b.ensureStream(url); err != nil {
		b.shutdownEmbedded()
		return nil, err
	}

	wmLogger := logging.NewWatermillAdapter()
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logging.Error().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	publisher, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false, // stream is pre-created above
			TrackMsgId:    true,  // job id doubles as the dedup key
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, wmLogger)
	if err != nil {
		b.shutdownEmbedded()
		return nil, fmt.Errorf("create jetstream publisher: %w", err)
	}
	b.publisher = publisher

	subscribersCount := cfg.SubscribersCount
	if subscribersCount < 1 {
		subscribersCount = 1
	}
	subscriber, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: subscribersCount,
		AckWaitTimeout:   cfg.AckWaitTimeout,
		CloseTimeout:     cfg.ShutdownTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			DurablePrefix: cfg.DurableName,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.BindStream(cfg.StreamName),
				natsgo.AckWait(cfg.AckWaitTimeout),
				natsgo.DeliverAll(), // replay anything still unacked
			},
		},
	}, wmLogger)
	if err != nil {
		closeQuietly(publisher)
		b.shutdownEmbedded()
		return nil, fmt.Errorf("create jetstream subscriber: %w", err)
	}
	b.subscriber = subscriber

	b.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "job-broker-publish",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Publish circuit breaker state change")
		},
	})

	logging.Info().Str("url", url).Str("stream", cfg.StreamName).Msg("NATS job broker ready")
	return b, nil
}

func startEmbeddedServer(cfg *config.NATSConfig) (*server.Server, error) {
	ns, err := server.NewServer(&server.Options{
		ServerName: "moviematch-jobs",
		JetStream:  true,
		StoreDir:   cfg.StoreDir,
		DontListen: false,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedded nats server: %w", err)
	}
	ns.ConfigureLogger()
	go ns.Start()
	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded nats server not ready within timeout")
	}
	return ns, nil
}

// ensureStream creates or updates the job stream covering every mode topic.
// Idempotent, safe to run on every startup.
func (b *NATSBroker) ensureStream(url string) error {
	conn, err := natsgo.Connect(url,
		natsgo.Timeout(b.cfg.ConnectTimeout),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(b.cfg.MaxReconnects),
		natsgo.ReconnectWait(b.cfg.ReconnectWait),
	)
	if err != nil {
		return fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	b.conn = conn

	js, err := jetstream.New(conn)
	if err != nil {
		return fmt.Errorf("create jetstream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	streamCfg := jetstream.StreamConfig{
		Name:       b.cfg.StreamName,
		Subjects:   []string{topicPrefix + ">"},
		Retention:  jetstream.WorkQueuePolicy,
		Storage:    jetstream.FileStorage,
		Discard:    jetstream.DiscardOld,
		Duplicates: 2 * time.Minute,
	}

	if _, err := js.Stream(ctx, b.cfg.StreamName); err == nil {
		if _, err := js.UpdateStream(ctx, streamCfg); err != nil {
			return fmt.Errorf("update stream %s: %w", b.cfg.StreamName, err)
		}
		return nil
	} else if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("look up stream %s: %w", b.cfg.StreamName, err)
	}

	if _, err := js.CreateStream(ctx, streamCfg); err != nil {
		return fmt.Errorf("create stream %s: %w", b.cfg.StreamName, err)
	}
	return nil
}

func (b *NATSBroker) Enqueue(ctx context.Context, topic string, msg *message.Message) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("%w: broker closed", ErrBrokerUnavailable)
	}
	b.mu.RUnlock()

	// Job id doubles as the Nats-Msg-Id so redelivered submits deduplicate.
	if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}

	_, err := b.breaker.Execute(func() (any, error) {
		return nil, b.publisher.Publish(topic, msg)
	})
	if err != nil {
		return fmt.Errorf("%w: publish to %s: %v", ErrBrokerUnavailable, topic, err)
	}
	return nil
}

func (b *NATSBroker) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.subscriber.Subscribe(ctx, topic)
}

// Healthy reports whether the underlying connection is usable.
func (b *NATSBroker) Healthy() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.closed && b.conn != nil && b.conn.IsConnected()
}

func (b *NATSBroker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	closeQuietly(b.subscriber)
	closeQuietly(b.publisher)
	if b.conn != nil {
		b.conn.Close()
	}
	b.shutdownEmbedded()
	return nil
}

func (b *NATSBroker) shutdownEmbedded() {
	if b.embedded != nil {
		b.embedded.Shutdown()
		b.embedded.WaitForShutdown()
	}
}

func closeQuietly(c interface{ Close() error }) {
	if c != nil {
		if err := c.Close(); err != nil {
			logging.Debug().Err(err).Msg("Close error ignored")
		}
	}
}
