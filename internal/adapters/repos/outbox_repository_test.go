package repos

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

	"github.com/mjolner/svc-commerce-events/internal/domain"
)

const outboxTestTable = "users_outbox"

const outboxTestSchema = `
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
)`

type OutboxRepositoryIntegrationSuite struct {
	suite.Suite

	ctx       context.Context
	container *tcpostgres.PostgresContainer
	db        *sqlx.DB
	repo      *OutboxRepository
}

func TestOutboxRepositoryIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	suite.Run(t, new(OutboxRepositoryIntegrationSuite))
}

func (s *OutboxRepositoryIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := tcpostgres.Run(s.ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("outbox_test"),
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

	_, err = db.ExecContext(s.ctx, outboxTestSchema)
	s.Require().NoError(err, "failed to create schema")

	s.repo = NewOutboxRepository(db, outboxTestTable)
}

func (s *OutboxRepositoryIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}

	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *OutboxRepositoryIntegrationSuite) SetupTest() {
	_, err := s.db.ExecContext(s.ctx, "TRUNCATE TABLE "+outboxTestTable)
	s.Require().NoError(err)
}

// saveEvent commits the given event through SaveInTx.
func (s *OutboxRepositoryIntegrationSuite) saveEvent(event *domain.OutboxEvent) {
	tx, err := s.db.BeginTxx(s.ctx, nil)
	s.Require().NoError(err)

	s.Require().NoError(s.repo.SaveInTx(s.ctx, tx, event))
	s.Require().NoError(tx.Commit())
}

func (s *OutboxRepositoryIntegrationSuite) pendingEvent(aggregateID uuid.UUID, createdAt time.Time) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		EventType:   domain.EventUserCreated,
		AggregateID: aggregateID,
		Payload: domain.UserCreatedPayload{
			Id:    aggregateID,
			Name:  "Ada Lovelace",
			Email: "ada@example.com",
		},
		CreatedAt: createdAt,
	}
}

func (s *OutboxRepositoryIntegrationSuite) TestSaveInTxDerivesDeterministicID() {
	aggregateID := uuid.New()
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	event := s.pendingEvent(aggregateID, createdAt)
	s.Require().Equal(uuid.Nil, event.ID)

	s.saveEvent(event)

	// A retried insert of the same logical event derives the same row key, so
	// the primary key rejects the duplicate instead of double-publishing.
	s.Require().NotEqual(uuid.Nil, event.ID)

	duplicate := s.pendingEvent(aggregateID, createdAt)
	tx, err := s.db.BeginTxx(s.ctx, nil)
	s.Require().NoError(err)

	err = s.repo.SaveInTx(s.ctx, tx, duplicate)
	s.Require().NoError(tx.Rollback())

	s.Require().Error(err)
	s.Require().Equal(event.ID, duplicate.ID)
}

func (s *OutboxRepositoryIntegrationSuite) TestSaveInTxKeepsCallerAssignedID() {
	event := s.pendingEvent(uuid.New(), time.Now().UTC())
	assigned := uuid.New()
	event.ID = assigned

	s.saveEvent(event)

	s.Require().Equal(assigned, event.ID)

	found, err := s.repo.FindUnsent(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Require().Equal(assigned, found[0].ID)
}

func (s *OutboxRepositoryIntegrationSuite) TestFindUnsentOrdersByCreationTime() {
	base := time.Now().UTC().Add(-time.Minute)

	second := s.pendingEvent(uuid.New(), base.Add(10*time.Second))
	first := s.pendingEvent(uuid.New(), base)
	third := s.pendingEvent(uuid.New(), base.Add(20*time.Second))

	s.saveEvent(second)
	s.saveEvent(first)
	s.saveEvent(third)

	found, err := s.repo.FindUnsent(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(found, 3)
	s.Require().Equal(first.ID, found[0].ID)
	s.Require().Equal(second.ID, found[1].ID)
	s.Require().Equal(third.ID, found[2].ID)

	// The typed payload survives the JSONB roundtrip.
	payload, ok := found[0].Payload.(domain.UserCreatedPayload)
	s.Require().True(ok, "expected a typed UserCreatedPayload, got %T", found[0].Payload)
	s.Require().Equal("ada@example.com", payload.Email)
}

func (s *OutboxRepositoryIntegrationSuite) TestAcquireBatchClaimsAndFences() {
	const maxRetries = 5

	pending := s.pendingEvent(uuid.New(), time.Now().UTC())
	s.saveEvent(pending)

	atCap := s.pendingEvent(uuid.New(), time.Now().UTC())
	atCap.RetryCount = maxRetries
	s.saveEvent(atCap)

	overCap := s.pendingEvent(uuid.New(), time.Now().UTC())
	overCap.RetryCount = maxRetries + 1
	s.saveEvent(overCap)

	sent := s.pendingEvent(uuid.New(), time.Now().UTC())
	s.saveEvent(sent)
	s.Require().NoError(s.repo.MarkSent(s.ctx, sent.ID))

	lockID := uuid.New()
	claimed, err := s.repo.AcquireBatch(s.ctx, 10, maxRetries, time.Minute, lockID)
	s.Require().NoError(err)

	// Rows at the retry cap are still handed out once more, so the publisher
	// can route them to the dead-letter topic. Rows past the cap and rows
	// already sent stay out of the batch.
	claimedIDs := make(map[uuid.UUID]bool, len(claimed))
	for _, event := range claimed {
		claimedIDs[event.ID] = true
		s.Require().NotNil(event.LockID)
		s.Require().Equal(lockID, *event.LockID)
		s.Require().NotNil(event.LockedUntil)
	}

	s.Require().Len(claimed, 2)
	s.Require().True(claimedIDs[pending.ID])
	s.Require().True(claimedIDs[atCap.ID])

	// The lease fences the rows against a competing drainer.
	again, err := s.repo.AcquireBatch(s.ctx, 10, maxRetries, time.Minute, uuid.New())
	s.Require().NoError(err)
	s.Require().Empty(again)
}

func (s *OutboxRepositoryIntegrationSuite) TestAcquireBatchReclaimsExpiredLease() {
	event := s.pendingEvent(uuid.New(), time.Now().UTC())
	s.saveEvent(event)

	// A zero lease expires immediately, standing in for a drainer that died
	// mid-batch.
	firstLock := uuid.New()
	claimed, err := s.repo.AcquireBatch(s.ctx, 10, 5, 0, firstLock)
	s.Require().NoError(err)
	s.Require().Len(claimed, 1)

	secondLock := uuid.New()
	reclaimed, err := s.repo.AcquireBatch(s.ctx, 10, 5, time.Minute, secondLock)
	s.Require().NoError(err)
	s.Require().Len(reclaimed, 1)
	s.Require().Equal(event.ID, reclaimed[0].ID)
	s.Require().Equal(secondLock, *reclaimed[0].LockID)
}

func (s *OutboxRepositoryIntegrationSuite) TestMarkSentIsIdempotent() {
	event := s.pendingEvent(uuid.New(), time.Now().UTC())
	s.saveEvent(event)

	s.Require().NoError(s.repo.MarkSent(s.ctx, event.ID))

	var firstSentAt time.Time
	s.Require().NoError(s.db.GetContext(s.ctx, &firstSentAt,
		"SELECT sent_at FROM "+outboxTestTable+" WHERE id = $1", event.ID))

	s.Require().NoError(s.repo.MarkSent(s.ctx, event.ID))

	var secondSentAt time.Time
	s.Require().NoError(s.db.GetContext(s.ctx, &secondSentAt,
		"SELECT sent_at FROM "+outboxTestTable+" WHERE id = $1", event.ID))

	s.Require().True(firstSentAt.Equal(secondSentAt), "a repeated MarkSent must not move the sent timestamp")

	found, err := s.repo.FindUnsent(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Empty(found)
}

func (s *OutboxRepositoryIntegrationSuite) TestMarkSentUnknownRow() {
	err := s.repo.MarkSent(s.ctx, uuid.New())
	s.Require().ErrorIs(err, domain.ErrOutboxRowNotFound)
}

func (s *OutboxRepositoryIntegrationSuite) TestMarkFailedTransientKeepsRowPending() {
	event := s.pendingEvent(uuid.New(), time.Now().UTC())
	s.saveEvent(event)

	claimed, err := s.repo.AcquireBatch(s.ctx, 10, 5, time.Minute, uuid.New())
	s.Require().NoError(err)
	s.Require().Len(claimed, 1)

	s.Require().NoError(s.repo.MarkFailed(s.ctx, event.ID, 1, "broker unavailable", false))

	// The lock is released, so the next cycle picks the row up again.
	reclaimed, err := s.repo.AcquireBatch(s.ctx, 10, 5, time.Minute, uuid.New())
	s.Require().NoError(err)
	s.Require().Len(reclaimed, 1)
	s.Require().Equal(1, reclaimed[0].RetryCount)
	s.Require().NotNil(reclaimed[0].ErrorDetails)
	s.Require().Equal("broker unavailable", *reclaimed[0].ErrorDetails)
}

func (s *OutboxRepositoryIntegrationSuite) TestMarkFailedPermanentSettlesRow() {
	event := s.pendingEvent(uuid.New(), time.Now().UTC())
	s.saveEvent(event)

	s.Require().NoError(s.repo.MarkFailed(s.ctx, event.ID, 6, "retries exhausted", true))

	found, err := s.repo.FindUnsent(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Empty(found, "a permanently failed row must leave the drain set")

	claimed, err := s.repo.AcquireBatch(s.ctx, 10, 100, time.Minute, uuid.New())
	s.Require().NoError(err)
	s.Require().Empty(claimed)
}

func (s *OutboxRepositoryIntegrationSuite) TestIncrementRetry() {
	event := s.pendingEvent(uuid.New(), time.Now().UTC())
	s.saveEvent(event)

	s.Require().NoError(s.repo.IncrementRetry(s.ctx, event.ID))
	s.Require().NoError(s.repo.IncrementRetry(s.ctx, event.ID))

	found, err := s.repo.FindUnsent(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Require().Equal(2, found[0].RetryCount)

	s.Require().ErrorIs(s.repo.IncrementRetry(s.ctx, uuid.New()), domain.ErrOutboxRowNotFound)
}
