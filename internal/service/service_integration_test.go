package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mjolner/svc-commerce-events/internal/adapters/repos"
	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
)

const commandFlowSchema = `
CREATE TABLE IF NOT EXISTS users (
    id         UUID PRIMARY KEY,
    name       TEXT        NOT NULL,
    email      TEXT        NOT NULL UNIQUE,
    status     TEXT        NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    id           UUID PRIMARY KEY,
    user_id      UUID             NOT NULL,
    product      TEXT             NOT NULL,
    quantity     INT              NOT NULL,
    price        DOUBLE PRECISION NOT NULL,
    status       TEXT             NOT NULL,
    created_at   TIMESTAMPTZ      NOT NULL,
    expires_at   TIMESTAMPTZ      NOT NULL,
    cancelled_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS users_outbox (
    id            UUID PRIMARY KEY,
    event_type    TEXT        NOT NULL,
    aggregate_id  UUID        NOT NULL,
    payload       JSONB       NOT NULL,
    retry_count   INT         NOT NULL DEFAULT 0,
    error_details TEXT,
    created_at    TIMESTAMPTZ NOT NULL,
    sent_at       TIMESTAMPTZ,
    locked_until  TIMESTAMPTZ,
    lock_id       UUID
);

CREATE TABLE IF NOT EXISTS orders_outbox (
    id            UUID PRIMARY KEY,
    event_type    TEXT        NOT NULL,
    aggregate_id  UUID        NOT NULL,
    payload       JSONB       NOT NULL,
    retry_count   INT         NOT NULL DEFAULT 0,
    error_details TEXT,
    created_at    TIMESTAMPTZ NOT NULL,
    sent_at       TIMESTAMPTZ,
    locked_until  TIMESTAMPTZ,
    lock_id       UUID
)`

// CommandFlowIntegrationSuite drives the user commands, the inactivation
// cascade and the expiry sweep against a real Postgres, asserting that every
// state change commits together with exactly the outbox rows it owes.
type CommandFlowIntegrationSuite struct {
	suite.Suite

	ctx       context.Context
	container *tcpostgres.PostgresContainer
	db        *sqlx.DB

	userRepo     *repos.UserRepository
	orderRepo    *repos.OrderRepository
	usersOutbox  *repos.OutboxRepository
	ordersOutbox *repos.OutboxRepository

	users     UserService
	reactions ReactionService
}

func TestCommandFlowIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	suite.Run(t, new(CommandFlowIntegrationSuite))
}

func (s *CommandFlowIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := tcpostgres.Run(s.ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("commands_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err, "failed to start postgres container")
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err, "failed to get connection string")

	db, err := sqlx.Connect("postgres", dsn)
	s.Require().NoError(err, "failed to connect to postgres")
	s.db = db

	_, err = db.ExecContext(s.ctx, commandFlowSchema)
	s.Require().NoError(err, "failed to create schema")

	s.userRepo = repos.NewUserRepository(db)
	s.orderRepo = repos.NewOrderRepository(db)
	s.usersOutbox = repos.NewOutboxRepository(db, "users_outbox")
	s.ordersOutbox = repos.NewOutboxRepository(db, "orders_outbox")
}

func (s *CommandFlowIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}

	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *CommandFlowIntegrationSuite) SetupTest() {
	_, err := s.db.ExecContext(s.ctx, "TRUNCATE TABLE users, orders, users_outbox, orders_outbox")
	s.Require().NoError(err)

	logger := infrastructure.NewTestLogger()
	metrics := &infrastructure.NoOpMetrics{}

	s.users = NewUserService(s.userRepo, s.usersOutbox, newFakeCacheRepo(), s.db, logger, metrics)
	s.reactions = NewReactionService(s.orderRepo, s.ordersOutbox, newFakeCacheRepo(), s.db, logger, metrics)
}

func (s *CommandFlowIntegrationSuite) seedUser(status domain.UserStatus) *domain.User {
	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.New(),
		Name:      "Ada Lovelace",
		Email:     uuid.NewString() + "@example.com",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := s.db.BeginTxx(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().NoError(s.userRepo.SaveInTx(s.ctx, tx, user))
	s.Require().NoError(tx.Commit())

	return user
}

func (s *CommandFlowIntegrationSuite) seedOrder(userID uuid.UUID, status domain.OrderStatus, expiresAt time.Time) *domain.Order {
	now := time.Now().UTC()
	order := &domain.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Product:   "espresso machine",
		Quantity:  1,
		Price:     349.90,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if status == domain.OrderStatusCancelled {
		order.CancelledAt = &now
	}

	tx, err := s.db.BeginTxx(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().NoError(s.orderRepo.SaveInTx(s.ctx, tx, order))
	s.Require().NoError(tx.Commit())

	return order
}

func (s *CommandFlowIntegrationSuite) inactivation(userID uuid.UUID) domain.UserStatusChangedPayload {
	return domain.UserStatusChangedPayload{
		EventID:    uuid.New(),
		OccurredAt: time.Now().UTC(),
		UserID:     userID,
		OldStatus:  domain.UserStatusActive,
		NewStatus:  domain.UserStatusInactive,
		Reason:     "fraud review",
	}
}

func (s *CommandFlowIntegrationSuite) TestCreateUserCommitsUserWithCreatedEvent() {
	user, err := s.users.CreateUser(s.ctx, "Grace Hopper", "grace@example.com")
	s.Require().NoError(err)

	stored, err := s.userRepo.FindByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Require().Equal(domain.UserStatusActive, stored.Status)

	rows, err := s.usersOutbox.FindUnsent(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Require().Equal(domain.EventUserCreated, rows[0].EventType)
	s.Require().Equal(user.ID, rows[0].AggregateID)

	payload, ok := rows[0].Payload.(domain.UserCreatedPayload)
	s.Require().True(ok)
	s.Require().Equal(user.ID, payload.Id)
	s.Require().Equal("grace@example.com", payload.Email)
}

func (s *CommandFlowIntegrationSuite) TestChangeUserStatusCommitsStatusChangeEvent() {
	user := s.seedUser(domain.UserStatusActive)

	updated, changed, err := s.users.ChangeUserStatus(s.ctx, user.ID, domain.UserStatusInactive, "fraud review")
	s.Require().NoError(err)
	s.Require().True(changed)
	s.Require().Equal(domain.UserStatusInactive, updated.Status)

	stored, err := s.userRepo.FindByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Require().Equal(domain.UserStatusInactive, stored.Status)

	rows, err := s.usersOutbox.FindUnsent(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Require().Equal(domain.EventUserStatusChanged, rows[0].EventType)

	payload, ok := rows[0].Payload.(domain.UserStatusChangedPayload)
	s.Require().True(ok)
	s.Require().Equal(domain.UserStatusActive, payload.OldStatus)
	s.Require().Equal(domain.UserStatusInactive, payload.NewStatus)
	s.Require().Equal("fraud review", payload.Reason)

	// A repeated request for the same status is a no-op and owes no event.
	_, changed, err = s.users.ChangeUserStatus(s.ctx, user.ID, domain.UserStatusInactive, "again")
	s.Require().NoError(err)
	s.Require().False(changed)

	rows, err = s.usersOutbox.FindUnsent(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
}

func (s *CommandFlowIntegrationSuite) TestInactivationCascadeCancelsOpenOrders() {
	user := s.seedUser(domain.UserStatusInactive)
	deadline := time.Now().UTC().Add(domain.DefaultOrderExpiry)

	pending := s.seedOrder(user.ID, domain.OrderStatusPending, deadline)
	awaitingPayment := s.seedOrder(user.ID, domain.OrderStatusPendingPayment, deadline)
	ready := s.seedOrder(user.ID, domain.OrderStatusReady, deadline)
	completed := s.seedOrder(user.ID, domain.OrderStatusCompleted, deadline)
	alreadyCancelled := s.seedOrder(user.ID, domain.OrderStatusCancelled, deadline)

	result, err := s.reactions.CancelOrdersForInactiveUser(s.ctx, s.inactivation(user.ID))
	s.Require().NoError(err)
	s.Require().ElementsMatch(
		[]uuid.UUID{pending.ID, awaitingPayment.ID, ready.ID},
		result.CancelledOrders,
	)

	for _, id := range result.CancelledOrders {
		order, err := s.orderRepo.FindByID(s.ctx, id)
		s.Require().NoError(err)
		s.Require().Equal(domain.OrderStatusCancelled, order.Status)
		s.Require().NotNil(order.CancelledAt)
	}

	untouched, err := s.orderRepo.FindByID(s.ctx, completed.ID)
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusCompleted, untouched.Status)
	s.Require().Nil(untouched.CancelledAt)

	rows, err := s.ordersOutbox.FindUnsent(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(rows, 3, "one cancellation event per cancelled order")

	cancelledBy := make(map[uuid.UUID]domain.OrderCancelledPayload, len(rows))
	for _, row := range rows {
		s.Require().Equal(domain.EventOrderCancelled, row.EventType)

		payload, ok := row.Payload.(domain.OrderCancelledPayload)
		s.Require().True(ok)
		s.Require().Equal(domain.CancelReasonUserInactivated, payload.Reason)
		s.Require().Equal(user.ID, payload.UserID)
		cancelledBy[payload.OrderID] = payload
	}

	s.Require().Contains(cancelledBy, pending.ID)
	s.Require().Contains(cancelledBy, awaitingPayment.ID)
	s.Require().Contains(cancelledBy, ready.ID)
	s.Require().NotContains(cancelledBy, completed.ID)
	s.Require().NotContains(cancelledBy, alreadyCancelled.ID)
}

func (s *CommandFlowIntegrationSuite) TestInactivationCascadeReplayCancelsNothingNew() {
	user := s.seedUser(domain.UserStatusInactive)
	deadline := time.Now().UTC().Add(domain.DefaultOrderExpiry)
	s.seedOrder(user.ID, domain.OrderStatusPending, deadline)
	s.seedOrder(user.ID, domain.OrderStatusReady, deadline)

	event := s.inactivation(user.ID)

	first, err := s.reactions.CancelOrdersForInactiveUser(s.ctx, event)
	s.Require().NoError(err)
	s.Require().Len(first.CancelledOrders, 2)

	// Redelivery of the same event finds no cancellable orders left, so the
	// replay converges without writing a second wave of events.
	replay, err := s.reactions.CancelOrdersForInactiveUser(s.ctx, event)
	s.Require().NoError(err)
	s.Require().Empty(replay.CancelledOrders)

	rows, err := s.ordersOutbox.FindUnsent(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
}

func (s *CommandFlowIntegrationSuite) TestExpireOrdersSweepsOverdueOrders() {
	user := s.seedUser(domain.UserStatusActive)
	past := time.Now().UTC().Add(-time.Minute)
	future := time.Now().UTC().Add(domain.DefaultOrderExpiry)

	overduePayment := s.seedOrder(user.ID, domain.OrderStatusPendingPayment, past)
	overduePickup := s.seedOrder(user.ID, domain.OrderStatusReady, past)
	stillDrafting := s.seedOrder(user.ID, domain.OrderStatusPending, past)
	onTime := s.seedOrder(user.ID, domain.OrderStatusPendingPayment, future)

	result, err := s.reactions.ExpireOrders(s.ctx, 50)
	s.Require().NoError(err)
	s.Require().ElementsMatch(
		[]uuid.UUID{overduePayment.ID, overduePickup.ID},
		result.ExpiredOrders,
	)

	for _, id := range result.ExpiredOrders {
		order, err := s.orderRepo.FindByID(s.ctx, id)
		s.Require().NoError(err)
		s.Require().Equal(domain.OrderStatusExpired, order.Status)
	}

	for _, id := range []uuid.UUID{stillDrafting.ID, onTime.ID} {
		order, err := s.orderRepo.FindByID(s.ctx, id)
		s.Require().NoError(err)
		s.Require().NotEqual(domain.OrderStatusExpired, order.Status)
	}

	rows, err := s.ordersOutbox.FindUnsent(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)

	for _, row := range rows {
		s.Require().Equal(domain.EventOrderCancelled, row.EventType)

		payload, ok := row.Payload.(domain.OrderCancelledPayload)
		s.Require().True(ok)
		s.Require().Equal(domain.CancelReasonTimeout, payload.Reason)
	}

	// A second sweep finds nothing eligible.
	again, err := s.reactions.ExpireOrders(s.ctx, 50)
	s.Require().NoError(err)
	s.Require().Empty(again.ExpiredOrders)
}
