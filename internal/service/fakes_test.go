package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/pkg/queue"
)

// Hand-rolled fakes for the repository and queue ports. Paths that need a
// real transaction are covered by the testcontainers suites in the adapters
// packages; these fakes serve the pre-transaction logic.

type fakeUserRepo struct {
	findByIDUser  *domain.User
	findByIDErr   error
	findByEmail   *domain.User
	findByEmailErr error

	findByIDCalls int
}

func (f *fakeUserRepo) FindByID(_ context.Context, _ uuid.UUID) (*domain.User, error) {
	f.findByIDCalls++

	return f.findByIDUser, f.findByIDErr
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, _ string) (*domain.User, error) {
	return f.findByEmail, f.findByEmailErr
}

func (f *fakeUserRepo) SaveInTx(_ context.Context, _ *sqlx.Tx, _ *domain.User) error {
	return nil
}

func (f *fakeUserRepo) UpdateStatusInTx(_ context.Context, _ *sqlx.Tx, _ uuid.UUID, _ domain.UserStatus, _ time.Time) error {
	return nil
}

type fakeOutboxRepo struct {
	unsent    []*domain.OutboxEvent
	unsentErr error
}

func (f *fakeOutboxRepo) SaveInTx(_ context.Context, _ *sqlx.Tx, _ *domain.OutboxEvent) error {
	return nil
}

func (f *fakeOutboxRepo) AcquireBatch(_ context.Context, _ int, _ int, _ time.Duration, _ uuid.UUID) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) MarkSent(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (f *fakeOutboxRepo) MarkFailed(_ context.Context, _ uuid.UUID, _ int, _ string, _ bool) error {
	return nil
}

func (f *fakeOutboxRepo) IncrementRetry(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (f *fakeOutboxRepo) FindUnsent(_ context.Context, _ int) ([]*domain.OutboxEvent, error) {
	return f.unsent, f.unsentErr
}

type fakeCacheRepo struct {
	mu      sync.Mutex
	store   map[string][]byte
	getErr  error
	setErr  error
	deleted []string
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{store: make(map[string][]byte)}
}

func (f *fakeCacheRepo) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}

	return f.store[key], nil
}

func (f *fakeCacheRepo) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setErr != nil {
		return f.setErr
	}

	f.store[key] = value

	return nil
}

func (f *fakeCacheRepo) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.store, key)
	f.deleted = append(f.deleted, key)

	return nil
}

type publishedMessage struct {
	exchange   string
	routingKey string
	payload    any
}

type fakeQueue struct {
	mu         sync.Mutex
	published  []publishedMessage
	publishErr error
}

func (f *fakeQueue) Publish(ctx context.Context, exchange, routingKey string, payload any) error {
	return f.PublishWithOptions(ctx, exchange, routingKey, payload)
}

func (f *fakeQueue) PublishWithOptions(_ context.Context, exchange, routingKey string, payload any, _ ...queue.PublisherOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.publishErr != nil {
		return f.publishErr
	}

	f.published = append(f.published, publishedMessage{
		exchange:   exchange,
		routingKey: routingKey,
		payload:    payload,
	})

	return nil
}

func (f *fakeQueue) publishedMessages() []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]publishedMessage, len(f.published))
	copy(out, f.published)

	return out
}

func (f *fakeQueue) Consume(_ context.Context, _, _ string, _ queue.MessageHandler, _ ...queue.ConsumerOption) error {
	return nil
}

func (f *fakeQueue) StartConsumer(_ context.Context, _, _ string, _ queue.MessageHandler, _ ...queue.ConsumerOption) (<-chan error, error) {
	return nil, nil
}

func (f *fakeQueue) DeclareExchange(_, _ string, _, _ bool) error {
	return nil
}

func (f *fakeQueue) DeclareQueue(_ string, _, _ bool) (amqp.Queue, error) {
	return amqp.Queue{}, nil
}

func (f *fakeQueue) BindQueue(_, _, _ string) error {
	return nil
}

func (f *fakeQueue) EnsureTopology(_, _ string, _ []string) error {
	return nil
}

func (f *fakeQueue) Connect() error {
	return nil
}

func (f *fakeQueue) ConnectWithRetry(_ context.Context, _ int) error {
	return nil
}

func (f *fakeQueue) Close() error {
	return nil
}

func (f *fakeQueue) IsConnected() bool {
	return true
}
