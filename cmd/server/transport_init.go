// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/shipwatch/internal/config"
	"github.com/tomtom215/shipwatch/internal/eventprocessor"
	"github.com/tomtom215/shipwatch/internal/logging"
)

// Transport holds the components carrying position reports from the replay
// source to the ingestion worker.
type Transport struct {
	Kind string

	// Publisher is breaker-wrapped and also backs the poison queue.
	Publisher *eventprocessor.Publisher

	// Positions is handed to the replay source.
	Positions *eventprocessor.PositionPublisher

	Router *eventprocessor.Router

	// Server is set when an embedded NATS server was started.
	Server *eventprocessor.EmbeddedServer

	subscriber message.Subscriber
	natsConn   *natsgo.Conn
}

// InitTransport builds the transport selected by cfg.Transport.Kind and
// registers handler as the single ingestion consumer. The router is
// returned unstarted.
func InitTransport(cfg *config.Config, handler message.NoPublishHandlerFunc) (*Transport, error) {
	if handler == nil {
		return nil, fmt.Errorf("%w: ingestion handler required", eventprocessor.ErrInvalidConfig)
	}

	t := &Transport{Kind: cfg.Transport.Kind}

	var err error
	switch cfg.Transport.Kind {
	case eventprocessor.TransportMemory:
		err = t.initMemory(cfg)
	case eventprocessor.TransportNATS:
		err = t.initNATS(cfg)
	default:
		err = fmt.Errorf("%w: unknown transport kind %q", eventprocessor.ErrInvalidConfig, cfg.Transport.Kind)
	}
	if err != nil {
		_ = t.Close(context.Background())
		return nil, err
	}

	if cfg.Transport.CircuitBreakerEnabled {
		t.Publisher.SetCircuitBreaker(eventprocessor.NewCircuitBreaker(
			eventprocessor.DefaultCircuitBreakerConfig("position-publisher")))
	}

	t.Positions, err = eventprocessor.NewPositionPublisher(t.Publisher, cfg.Transport.Topic)
	if err != nil {
		_ = t.Close(context.Background())
		return nil, err
	}

	routerCfg := routerConfigFrom(&cfg.Transport)
	var poisonPub message.Publisher
	if routerCfg.PoisonQueueTopic != "" {
		poisonPub = t.Publisher
	}

	t.Router, err = eventprocessor.NewRouter(&routerCfg, poisonPub, nil)
	if err != nil {
		_ = t.Close(context.Background())
		return nil, fmt.Errorf("create router: %w", err)
	}

	topic := cfg.Transport.Topic
	if topic == "" {
		topic = eventprocessor.PositionsTopic
	}
	t.Router.AddConsumerHandler("ingest", topic, t.subscriber, handler)

	logging.Info().
		Str("kind", t.Kind).
		Str("topic", topic).
		Int("retry", routerCfg.RetryMaxRetries).
		Bool("dedup", routerCfg.DeduplicationEnabled).
		Str("poison_topic", routerCfg.PoisonQueueTopic).
		Bool("circuit_breaker", cfg.Transport.CircuitBreakerEnabled).
		Msg("Transport initialized")

	return t, nil
}

// routerConfigFrom maps transport settings onto the router configuration.
func routerConfigFrom(tc *config.TransportConfig) eventprocessor.RouterConfig {
	rc := eventprocessor.DefaultRouterConfig()
	rc.RetryMaxRetries = tc.RouterRetryCount
	if tc.RouterRetryInitialInterval > 0 {
		rc.RetryInitialInterval = tc.RouterRetryInitialInterval
		rc.RetryMaxInterval = tc.RouterRetryInitialInterval * 10
	}
	rc.DeduplicationEnabled = tc.RouterDeduplicationEnabled
	if tc.RouterDeduplicationTTL > 0 {
		rc.DeduplicationTTL = tc.RouterDeduplicationTTL
	}
	if tc.RouterCloseTimeout > 0 {
		rc.CloseTimeout = tc.RouterCloseTimeout
	}
	rc.PoisonQueueTopic = ""
	if tc.RouterPoisonQueueEnabled {
		rc.PoisonQueueTopic = tc.RouterPoisonQueueTopic
		if rc.PoisonQueueTopic == "" {
			rc.PoisonQueueTopic = eventprocessor.PoisonTopic
		}
	}
	return rc
}

func (t *Transport) initMemory(cfg *config.Config) error {
	pubSub := eventprocessor.NewMemoryPubSub(cfg.Transport.MemoryBuffer, nil)
	t.subscriber = pubSub

	pub, err := eventprocessor.WrapPublisher(pubSub, nil)
	if err != nil {
		return err
	}
	t.Publisher = pub
	return nil
}

func (t *Transport) initNATS(cfg *config.Config) error {
	natsURL := cfg.NATS.URL
	if cfg.NATS.EmbeddedServer {
		serverCfg := eventprocessor.DefaultServerConfig()
		serverCfg.StoreDir = cfg.NATS.StoreDir
		serverCfg.JetStreamMaxMem = cfg.NATS.MaxMemory
		serverCfg.JetStreamMaxStore = cfg.NATS.MaxStore

		server, err := eventprocessor.NewEmbeddedServer(&serverCfg)
		if err != nil {
			return err
		}
		t.Server = server
		natsURL = server.ClientURL()
		logging.Info().Str("url", natsURL).Msg("Embedded NATS server started")
	} else {
		logging.Info().Str("url", natsURL).Msg("Using external NATS server")
	}

	nc, err := natsgo.Connect(natsURL,
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	t.natsConn = nc

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}

	streamCfg := eventprocessor.DefaultStreamConfig()
	if cfg.NATS.StreamName != "" {
		streamCfg.Name = cfg.NATS.StreamName
	}
	if cfg.NATS.StreamMaxAge > 0 {
		streamCfg.MaxAge = cfg.NATS.StreamMaxAge
	}
	if cfg.NATS.DuplicateWindow > 0 {
		streamCfg.DuplicateWindow = cfg.NATS.DuplicateWindow
	}

	initializer, err := eventprocessor.NewStreamInitializer(js, &streamCfg)
	if err != nil {
		return fmt.Errorf("create stream initializer: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	stream, err := initializer.EnsureStream(ctx)
	if err != nil {
		return fmt.Errorf("ensure stream exists: %w", err)
	}
	info := stream.CachedInfo()
	logging.Info().
		Str("name", info.Config.Name).
		Strs("subjects", info.Config.Subjects).
		Dur("max_age", info.Config.MaxAge).
		Msg("JetStream stream ready")

	pub, err := eventprocessor.NewPublisher(eventprocessor.DefaultPublisherConfig(natsURL), nil)
	if err != nil {
		return err
	}
	t.Publisher = pub

	subCfg := eventprocessor.DefaultSubscriberConfig(natsURL)
	subCfg.StreamName = streamCfg.Name
	if cfg.NATS.DurableName != "" {
		subCfg.DurableName = cfg.NATS.DurableName
	}
	if cfg.NATS.QueueGroup != "" {
		subCfg.QueueGroup = cfg.NATS.QueueGroup
	}
	if cfg.NATS.AckWait > 0 {
		subCfg.AckWaitTimeout = cfg.NATS.AckWait
	}
	if cfg.NATS.MaxDeliver > 0 {
		subCfg.MaxDeliver = cfg.NATS.MaxDeliver
	}

	sub, err := eventprocessor.NewSubscriber(&subCfg, nil)
	if err != nil {
		return err
	}
	t.subscriber = sub
	return nil
}

// Close releases the publisher, subscriber and NATS connection, then stops
// the embedded server. It is safe on a partially built Transport.
func (t *Transport) Close(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	if t.Publisher != nil {
		if err := t.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if t.subscriber != nil {
		if err := t.subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	if t.natsConn != nil {
		t.natsConn.Close()
	}
	if t.Server != nil {
		if err := t.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown NATS server: %w", err))
		}
	}
	return errors.Join(errs...)
}
