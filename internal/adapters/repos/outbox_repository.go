package repos

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mjolner/svc-commerce-events/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type (
	// OutboxRepository stores outbox rows for one service. Each service owns
	// its own table, so the table name is fixed at construction.
	OutboxRepository struct {
		conn  *sqlx.DB
		table string
	}

	outboxEventRow struct {
		ID           string     `db:"id"`
		EventType    string     `db:"event_type"`
		AggregateID  string     `db:"aggregate_id"`
		Payload      []byte     `db:"payload"`
		RetryCount   int        `db:"retry_count"`
		ErrorDetails *string    `db:"error_details"`
		CreatedAt    time.Time  `db:"created_at"`
		SentAt       *time.Time `db:"sent_at"`
		LockedUntil  *time.Time `db:"locked_until"`
		LockID       *string    `db:"lock_id"`
	}
)

var outboxColumns = []string{
	"id", "event_type", "aggregate_id", "payload", "retry_count",
	"error_details", "created_at", "sent_at", "locked_until", "lock_id",
}

func NewOutboxRepository(db *sqlx.DB, table string) *OutboxRepository {
	return &OutboxRepository{
		conn:  db,
		table: table,
	}
}

// SaveInTx appends a pending outbox row within the caller's transaction.
func (r *OutboxRepository) SaveInTx(ctx context.Context, tx *sqlx.Tx, event *domain.OutboxEvent) error {
	if event.ID == uuid.Nil {
		eventName := fmt.Sprintf("%s::%s::%d",
			event.AggregateID.String(),
			event.EventType,
			event.CreatedAt.UnixNano())
		event.ID = uuid.NewSHA1(OutboxNamespace, []byte(eventName))
	}

	payloadJSON, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query, args, err := psql.Insert(r.table).
		Columns("id", "event_type", "aggregate_id", "payload", "retry_count", "created_at").
		Values(event.ID, event.EventType, event.AggregateID, payloadJSON, event.RetryCount, event.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save outbox event: %w", err)
	}

	return nil
}

// AcquireBatch claims up to limit pending rows for the given lock owner.
// SKIP LOCKED keeps concurrent drainers from blocking on each other, and the
// lock columns fence rows against re-acquisition until the lease expires.
func (r *OutboxRepository) AcquireBatch(ctx context.Context, limit int, maxRetries int, lockDuration time.Duration, lockID uuid.UUID) ([]*domain.OutboxEvent, error) {
	subQuery, subArgs, err := sq.Select("id").
		From(r.table).
		Where(sq.Expr("sent_at IS NULL")).
		// Rows at the cap are still claimed once more so the publisher can
		// route them to the dead-letter topic.
		Where(sq.LtOrEq{"retry_count": maxRetries}).
		Where(sq.Expr("(locked_until IS NULL OR locked_until < NOW())")).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build claim subquery: %w", err)
	}

	query, args, err := psql.Update(r.table).
		Set("locked_until", sq.Expr("NOW() + make_interval(secs => ?)", lockDuration.Seconds())).
		Set("lock_id", lockID).
		Where(sq.Expr("id IN ("+subQuery+")", subArgs...)).
		Suffix("RETURNING " + strings.Join(outboxColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build claim query: %w", err)
	}

	var rows []outboxEventRow
	if err := r.conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to claim outbox batch: %w", err)
	}

	return r.convertRows(rows)
}

// MarkSent stamps the sent timestamp and releases the lock. COALESCE keeps a
// second call from moving the timestamp, so retried settlements are harmless.
func (r *OutboxRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Update(r.table).
		Set("sent_at", sq.Expr("COALESCE(sent_at, NOW())")).
		Set("locked_until", nil).
		Set("lock_id", nil).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark event as sent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrOutboxRowNotFound
	}

	return nil
}

// MarkFailed records a delivery failure and releases the lock so the row is
// retried on a later cycle. A permanent failure also stamps sent_at, which
// takes the row out of the drain set for good.
func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, retryCount int, errorDetails string, permanent bool) error {
	builder := psql.Update(r.table).
		Set("retry_count", retryCount).
		Set("error_details", errorDetails).
		Set("locked_until", nil).
		Set("lock_id", nil).
		Where(sq.Eq{"id": id})

	if permanent {
		builder = builder.Set("sent_at", sq.Expr("NOW()"))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark event as failed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrOutboxRowNotFound
	}

	return nil
}

// IncrementRetry bumps the retry counter without settling the row.
func (r *OutboxRepository) IncrementRetry(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Update(r.table).
		Set("retry_count", sq.Expr("retry_count + 1")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to increment retry count: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrOutboxRowNotFound
	}

	return nil
}

// FindUnsent returns pending rows ordered by creation time.
func (r *OutboxRepository) FindUnsent(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	query, args, err := psql.Select(outboxColumns...).
		From(r.table).
		Where(sq.Expr("sent_at IS NULL")).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var rows []outboxEventRow
	if err := r.conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query unsent outbox events: %w", err)
	}

	return r.convertRows(rows)
}

func (r *OutboxRepository) convertRows(rows []outboxEventRow) ([]*domain.OutboxEvent, error) {
	events := make([]*domain.OutboxEvent, 0, len(rows))
	for _, row := range rows {
		event, err := r.convertRowToEvent(row)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, nil
}

// convertRowToEvent converts a single database row to a domain event.
func (r *OutboxRepository) convertRowToEvent(row outboxEventRow) (*domain.OutboxEvent, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse id: %w", err)
	}

	aggregateID, err := uuid.Parse(row.AggregateID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse aggregate_id: %w", err)
	}

	payload, err := unmarshalPayload(domain.EventType(row.EventType), row.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	var lockID *uuid.UUID
	if row.LockID != nil {
		parsed, err := uuid.Parse(*row.LockID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse lock_id: %w", err)
		}
		lockID = &parsed
	}

	return &domain.OutboxEvent{
		ID:           id,
		EventType:    domain.EventType(row.EventType),
		AggregateID:  aggregateID,
		Payload:      payload,
		RetryCount:   row.RetryCount,
		ErrorDetails: row.ErrorDetails,
		CreatedAt:    row.CreatedAt,
		SentAt:       row.SentAt,
		LockedUntil:  row.LockedUntil,
		LockID:       lockID,
	}, nil
}

// unmarshalPayload restores the typed payload based on the event type.
func unmarshalPayload(eventType domain.EventType, payloadJSON []byte) (any, error) {
	switch eventType {
	case domain.EventUserCreated:
		var payload domain.UserCreatedPayload
		if err := json.Unmarshal(payloadJSON, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal UserCreatedPayload: %w", err)
		}

		return payload, nil
	case domain.EventUserStatusChanged:
		var payload domain.UserStatusChangedPayload
		if err := json.Unmarshal(payloadJSON, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal UserStatusChangedPayload: %w", err)
		}

		return payload, nil
	case domain.EventOrderCreated:
		var payload domain.OrderCreatedPayload
		if err := json.Unmarshal(payloadJSON, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal OrderCreatedPayload: %w", err)
		}

		return payload, nil
	case domain.EventOrderStatusChanged:
		var payload domain.OrderStatusChangedPayload
		if err := json.Unmarshal(payloadJSON, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal OrderStatusChangedPayload: %w", err)
		}

		return payload, nil
	case domain.EventOrderCancelled:
		var payload domain.OrderCancelledPayload
		if err := json.Unmarshal(payloadJSON, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal OrderCancelledPayload: %w", err)
		}

		return payload, nil
	default:
		// Unknown event types keep their raw shape.
		var payload any
		if err := json.Unmarshal(payloadJSON, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal generic payload: %w", err)
		}

		return payload, nil
	}
}

