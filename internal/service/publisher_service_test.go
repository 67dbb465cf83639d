package service

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/mjolner/svc-commerce-events/internal/config"
	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
)

type PublisherServiceSuite struct {
	suite.Suite

	queue      *fakeQueue
	outboxRepo *fakeOutboxRepo
	service    PublisherService
}

func TestPublisherServiceSuite(t *testing.T) {
	suite.Run(t, new(PublisherServiceSuite))
}

func (s *PublisherServiceSuite) SetupTest() {
	s.queue = &fakeQueue{}
	s.outboxRepo = &fakeOutboxRepo{}

	s.service = NewPublisherService(
		s.outboxRepo,
		s.queue,
		config.QueueConfig{ExchangeName: "commerce-events"},
		config.OutboxConfig{
			MaxRetries:      5,
			DeadLetterTopic: "commerce.dead-letter",
		},
		infrastructure.NewTestLogger(),
		&infrastructure.NoOpMetrics{},
	)
}

func (s *PublisherServiceSuite) pendingEvent(retryCount int) *domain.OutboxEvent {
	userID := uuid.New()

	return &domain.OutboxEvent{
		ID:          uuid.New(),
		EventType:   domain.EventUserCreated,
		AggregateID: userID,
		Payload: domain.UserCreatedPayload{
			Id:    userID,
			Name:  "Grace Hopper",
			Email: "grace@example.com",
		},
		RetryCount: retryCount,
		CreatedAt:  time.Now().UTC(),
	}
}

func (s *PublisherServiceSuite) TestPublishEventSuccess() {
	event := s.pendingEvent(0)

	result, err := s.service.PublishEvent(context.Background(), event)
	s.Require().NoError(err)
	s.Require().Equal(domain.PublishSuccess, result.Outcome)
	s.Require().Equal(event.ID, result.EventID)
	s.Require().False(result.DeadLettered)

	published := s.queue.publishedMessages()
	s.Require().Len(published, 1)
	s.Require().Equal("commerce-events", published[0].exchange)
	s.Require().Equal("users.created", published[0].routingKey)
	s.Require().Equal(event.Payload, published[0].payload)
}

func (s *PublisherServiceSuite) TestPublishEventTransientFailure() {
	s.queue.publishErr = errors.New("connection refused")

	event := s.pendingEvent(2)

	result, err := s.service.PublishEvent(context.Background(), event)
	s.Require().NoError(err, "a failed delivery is an outcome, not a handler error")
	s.Require().Equal(domain.PublishTransientFailure, result.Outcome)
	s.Require().Contains(result.Error, "connection refused")
	s.Require().False(result.DeadLettered)
}

func (s *PublisherServiceSuite) TestPublishEventPermanentFailureOnMarshalError() {
	s.queue.publishErr = &json.UnsupportedTypeError{Type: reflect.TypeOf(make(chan int))}

	event := s.pendingEvent(0)

	result, err := s.service.PublishEvent(context.Background(), event)
	s.Require().NoError(err)
	s.Require().Equal(domain.PublishPermanentFailure, result.Outcome)
	s.Require().NotEmpty(result.Error)
}

func (s *PublisherServiceSuite) TestPublishEventAtRetryCapGoesToDeadLetter() {
	event := s.pendingEvent(5)

	result, err := s.service.PublishEvent(context.Background(), event)
	s.Require().NoError(err)
	s.Require().Equal(domain.PublishPermanentFailure, result.Outcome)
	s.Require().True(result.DeadLettered)

	published := s.queue.publishedMessages()
	s.Require().Len(published, 1)
	s.Require().Equal("commerce.dead-letter", published[0].routingKey)

	envelope, ok := published[0].payload.(domain.DeadLetterEnvelope)
	s.Require().True(ok, "expected a DeadLetterEnvelope, got %T", published[0].payload)
	s.Require().Equal(event.ID, envelope.ID)
	s.Require().Equal(event.EventType, envelope.EventType)
	s.Require().Equal(5, envelope.RetryCount)
	s.Require().Equal(domain.DeadLetterReasonMaxRetries, envelope.Reason)
}

func (s *PublisherServiceSuite) TestDeadLetterPublishFailureStaysPermanent() {
	s.queue.publishErr = errors.New("broker unavailable")

	event := s.pendingEvent(7)

	result, err := s.service.PublishEvent(context.Background(), event)
	s.Require().NoError(err)
	s.Require().Equal(domain.PublishPermanentFailure, result.Outcome)
	s.Require().False(result.DeadLettered)
	s.Require().Contains(result.Error, "broker unavailable")
}

func (s *PublisherServiceSuite) TestFetchPendingEventsDelegatesToRepository() {
	s.outboxRepo.unsent = []*domain.OutboxEvent{s.pendingEvent(0), s.pendingEvent(1)}

	events, err := s.service.FetchPendingEvents(context.Background(), 10)
	s.Require().NoError(err)
	s.Require().Len(events, 2)

	s.outboxRepo.unsent = nil
	s.outboxRepo.unsentErr = errors.New("database down")

	_, err = s.service.FetchPendingEvents(context.Background(), 10)
	s.Require().Error(err)
}
