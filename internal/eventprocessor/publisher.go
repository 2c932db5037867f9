// CineSwipe - Real-Time Group Movie Swipe Sessions
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineswipe

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jonboulle/clockwork"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cineswipe/internal/metrics"
	"github.com/tomtom215/cineswipe/internal/session"
)

// Publisher wraps a watermill publisher with a circuit breaker.
type Publisher struct {
	publisher      message.Publisher
	circuitBreaker *gobreaker.CircuitBreaker[interface{}]
	prefix         string
	clock          clockwork.Clock
	mu             sync.RWMutex
	closed         bool
}

// NewNATSPublisher connects to NATS and publishes with core NATS semantics.
// Room events are fire-and-forget notifications, so JetStream is disabled.
func NewNATSPublisher(cfg PublisherConfig, logger watermill.LoggerAdapter) (*Publisher, error) {
	if logger == nil {
		logger = NewWatermillLogger()
	}

	natsOpts := []natsgo.Option{
		natsgo.Name("cineswipe"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	return NewPublisher(pub, cfg.SubjectPrefix), nil
}

// NewPublisher wraps any watermill publisher. Tests use the gochannel pub/sub.
func NewPublisher(pub message.Publisher, subjectPrefix string) *Publisher {
	if subjectPrefix == "" {
		subjectPrefix = "cineswipe.rooms"
	}
	return &Publisher{
		publisher: pub,
		prefix:    subjectPrefix,
		clock:     clockwork.NewRealClock(),
	}
}

// SetCircuitBreaker configures the circuit breaker for publish operations.
func (p *Publisher) SetCircuitBreaker(cb *gobreaker.CircuitBreaker[interface{}]) {
	p.circuitBreaker = cb
}

// SetClock overrides the clock stamping OccurredAt.
func (p *Publisher) SetClock(c clockwork.Clock) {
	p.clock = c
}

// Publish sends msg to topic through the breaker. Outcomes are counted as
// ok, error or breaker_open.
func (p *Publisher) Publish(_ context.Context, topic string, msg *message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	var err error
	if p.circuitBreaker != nil {
		_, err = p.circuitBreaker.Execute(func() (interface{}, error) {
			return nil, p.publisher.Publish(topic, msg)
		})
	} else {
		err = p.publisher.Publish(topic, msg)
	}

	switch {
	case err == nil:
		metrics.RecordEventPublish("ok")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordEventPublish("breaker_open")
	default:
		metrics.RecordEventPublish("error")
	}
	return err
}

// PublishRoomEvent serializes ev and publishes it to
// <prefix>.<room_id>.<event_type>.
func (p *Publisher) PublishRoomEvent(ctx context.Context, ev session.Event) error {
	re, err := NewRoomEvent(ev, p.clock.Now())
	if err != nil {
		return err
	}
	data, err := SerializeEvent(re)
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(re.EventID, data)
	msg.Metadata.Set("room_id", re.RoomID)
	msg.Metadata.Set("event_type", re.Type)
	msg.SetContext(ctx)

	return p.Publish(ctx, re.Topic(p.prefix), msg)
}

// Close gracefully shuts down the publisher.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
