package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mjolner/svc-commerce-events/internal/domain"
)

type (
	// UserRepository persists the users table. Writes that must be atomic
	// with an outbox append take the enclosing transaction.
	UserRepository interface {
		FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
		FindByEmail(ctx context.Context, email string) (*domain.User, error)
		SaveInTx(ctx context.Context, tx *sqlx.Tx, user *domain.User) error
		UpdateStatusInTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status domain.UserStatus, updatedAt time.Time) error
	}

	// OrderRepository persists the orders table.
	OrderRepository interface {
		FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
		ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
		SaveInTx(ctx context.Context, tx *sqlx.Tx, order *domain.Order) error
		UpdateStatusInTx(ctx context.Context, tx *sqlx.Tx, order *domain.Order) error

		// FindCancellableInTx loads, under the transaction and locked against
		// concurrent writers, the user's orders a user-inactivation cascade
		// may still cancel. Re-reading inside the transaction keeps the
		// reaction idempotent under replay.
		FindCancellableInTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) ([]*domain.Order, error)

		// FindExpiredInTx loads, under the transaction, up to limit orders
		// whose deadline passed while awaiting payment or pickup.
		FindExpiredInTx(ctx context.Context, tx *sqlx.Tx, now time.Time, limit int) ([]*domain.Order, error)
	}

	// OutboxRepository handles outbox rows for reliable event delivery.
	OutboxRepository interface {
		// SaveInTx appends a pending row within the caller's transaction, so
		// the row becomes durable if and only if the transaction commits.
		SaveInTx(ctx context.Context, tx *sqlx.Tx, event *domain.OutboxEvent) error

		// AcquireBatch claims up to limit pending rows under the retry cap
		// for the given lock owner, ordered by creation time. Claimed rows
		// are invisible to other drainers until lockDuration elapses.
		AcquireBatch(ctx context.Context, limit int, maxRetries int, lockDuration time.Duration, lockID uuid.UUID) ([]*domain.OutboxEvent, error)

		// MarkSent stamps the sent timestamp; idempotent.
		MarkSent(ctx context.Context, id uuid.UUID) error

		// MarkFailed records a delivery failure. A permanent failure also
		// stamps the sent timestamp so the row never drains again.
		MarkFailed(ctx context.Context, id uuid.UUID, retryCount int, errorDetails string, permanent bool) error

		// IncrementRetry bumps the retry counter without settling the row.
		IncrementRetry(ctx context.Context, id uuid.UUID) error

		// FindUnsent returns pending rows for the operational endpoint.
		FindUnsent(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	}
)
