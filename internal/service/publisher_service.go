package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mjolner/svc-commerce-events/internal/config"
	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/ports"
	"github.com/mjolner/svc-commerce-events/pkg/queue"
)

type (
	// PublisherService delivers one outbox row to the bus. The row's event
	// type is the routing key; rows past the retry cap go to the dead-letter
	// topic instead.
	PublisherService interface {
		FetchPendingEvents(ctx context.Context, batchSize int) ([]*domain.OutboxEvent, error)
		PublishEvent(ctx context.Context, event *domain.OutboxEvent) (*domain.PublishOutboxEventResult, error)
	}

	publisherService struct {
		outboxRepo ports.OutboxRepository
		queue      infrastructure.Queue
		queueCfg   config.QueueConfig
		outboxCfg  config.OutboxConfig
		logger     infrastructure.Logger
		metrics    infrastructure.Metrics
	}
)

func NewPublisherService(
	outboxRepo ports.OutboxRepository,
	q infrastructure.Queue,
	queueCfg config.QueueConfig,
	outboxCfg config.OutboxConfig,
	logger infrastructure.Logger,
	metrics infrastructure.Metrics,
) PublisherService {
	return publisherService{
		outboxRepo: outboxRepo,
		queue:      q,
		queueCfg:   queueCfg,
		outboxCfg:  outboxCfg,
		logger:     logger,
		metrics:    metrics,
	}
}

func (s publisherService) FetchPendingEvents(ctx context.Context, batchSize int) ([]*domain.OutboxEvent, error) {
	return s.outboxRepo.FindUnsent(ctx, batchSize)
}

func (s publisherService) PublishEvent(ctx context.Context, event *domain.OutboxEvent) (*domain.PublishOutboxEventResult, error) {
	if !event.CanRetry(s.outboxCfg.MaxRetries) {
		return s.publishDeadLetter(ctx, event)
	}

	routingKey := string(event.EventType)
	err := s.queue.PublishWithOptions(
		ctx,
		s.queueCfg.ExchangeName,
		routingKey,
		event.Payload,
		queue.WithMessageID(event.ID.String()),
	)
	if err != nil {
		outcome := domain.PublishTransientFailure
		if isPermanentPublishError(err) {
			outcome = domain.PublishPermanentFailure
		}

		s.metrics.RecordOutboxPublish(ctx, routingKey, outcome.String())

		s.logger.Debug().
			Err(err).
			Str("event_id", event.ID.String()).
			Str("event_type", routingKey).
			Str("outcome", outcome.String()).
			Msg("failed to publish outbox event")

		return &domain.PublishOutboxEventResult{
			EventID: event.ID,
			Outcome: outcome,
			Error:   err.Error(),
		}, nil
	}

	s.metrics.RecordOutboxPublish(ctx, routingKey, domain.PublishSuccess.String())

	s.logger.Debug().
		Str("event_id", event.ID.String()).
		Str("event_type", routingKey).
		Msg("published outbox event")

	return &domain.PublishOutboxEventResult{
		EventID: event.ID,
		Outcome: domain.PublishSuccess,
	}, nil
}

// publishDeadLetter quarantines an exhausted row. The outcome is permanent
// either way so the drainer settles the row and the cycle stops.
func (s publisherService) publishDeadLetter(ctx context.Context, event *domain.OutboxEvent) (*domain.PublishOutboxEventResult, error) {
	envelope := domain.NewDeadLetterEnvelope(event, time.Now().UTC())

	err := s.queue.PublishWithOptions(
		ctx,
		s.queueCfg.ExchangeName,
		s.outboxCfg.DeadLetterTopic,
		envelope,
		queue.WithMessageID(event.ID.String()),
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("event_id", event.ID.String()).
			Msg("failed to publish dead-letter envelope")

		return &domain.PublishOutboxEventResult{
			EventID: event.ID,
			Outcome: domain.PublishPermanentFailure,
			Error:   err.Error(),
		}, nil
	}

	s.metrics.RecordDeadLetter(ctx, string(event.EventType))

	s.logger.Warn().
		Str("event_id", event.ID.String()).
		Str("event_type", string(event.EventType)).
		Int("retry_count", event.RetryCount).
		Msg("event routed to dead-letter topic")

	return &domain.PublishOutboxEventResult{
		EventID:      event.ID,
		Outcome:      domain.PublishPermanentFailure,
		DeadLettered: true,
	}, nil
}

// isPermanentPublishError reports whether err signals an unrecoverable
// payload problem rather than a broker hiccup.
func isPermanentPublishError(err error) bool {
	var marshalerErr *json.MarshalerError
	var unsupportedType *json.UnsupportedTypeError
	var unsupportedValue *json.UnsupportedValueError

	return errors.As(err, &marshalerErr) ||
		errors.As(err, &unsupportedType) ||
		errors.As(err, &unsupportedValue)
}
