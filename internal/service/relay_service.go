package service

import (
	"context"

	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/ports"
)

type (
	// RelayService tees bus records to connected UI clients. It performs no
	// business logic; the payload is forwarded untouched.
	RelayService interface {
		Relay(ctx context.Context, topic string, payload []byte) error
	}

	relayService struct {
		sink    ports.EventSink
		logger  infrastructure.Logger
		metrics infrastructure.Metrics
	}
)

func NewRelayService(sink ports.EventSink, logger infrastructure.Logger, metrics infrastructure.Metrics) RelayService {
	return &relayService{
		sink:    sink,
		logger:  logger,
		metrics: metrics,
	}
}

func (s *relayService) Relay(ctx context.Context, topic string, payload []byte) error {
	s.sink.Broadcast(domain.RelayEvent{
		Topic:   topic,
		Payload: payload,
	})

	s.metrics.RecordConsumedEvent(ctx, topic, "relayed")

	s.logger.Debug().
		Str("topic", topic).
		Int("size_bytes", len(payload)).
		Msg("relayed bus record")

	return nil
}
