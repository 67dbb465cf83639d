package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mjolner/svc-commerce-events/internal/domain"
)

const ordersTable = "orders"

type (
	OrderRepository struct {
		conn *sqlx.DB
	}

	orderRow struct {
		ID          string     `db:"id"`
		UserID      string     `db:"user_id"`
		Product     string     `db:"product"`
		Quantity    int        `db:"quantity"`
		Price       float64    `db:"price"`
		Status      string     `db:"status"`
		CreatedAt   time.Time  `db:"created_at"`
		ExpiresAt   time.Time  `db:"expires_at"`
		CancelledAt *time.Time `db:"cancelled_at"`
	}
)

var orderColumns = []string{
	"id", "user_id", "product", "quantity", "price",
	"status", "created_at", "expires_at", "cancelled_at",
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{
		conn: db,
	}
}

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query, args, err := psql.Select(orderColumns...).
		From(ordersTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var row orderRow
	if err := r.conn.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}

		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return convertRowToOrder(row)
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query, args, err := psql.Select(orderColumns...).
		From(ordersTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var rows []orderRow
	if err := r.conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query orders by user: %w", err)
	}

	return convertRowsToOrders(rows)
}

func (r *OrderRepository) SaveInTx(ctx context.Context, tx *sqlx.Tx, order *domain.Order) error {
	query, args, err := psql.Insert(ordersTable).
		Columns(orderColumns...).
		Values(order.ID, order.UserID, order.Product, order.Quantity, order.Price,
			order.Status, order.CreatedAt, order.ExpiresAt, order.CancelledAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	return nil
}

// UpdateStatusInTx writes the order's status and cancellation timestamp
// within the caller's transaction.
func (r *OrderRepository) UpdateStatusInTx(ctx context.Context, tx *sqlx.Tx, order *domain.Order) error {
	query, args, err := psql.Update(ordersTable).
		Set("status", order.Status).
		Set("cancelled_at", order.CancelledAt).
		Where(sq.Eq{"id": order.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrOrderNotFound
	}

	return nil
}

// FindCancellableInTx loads the user's still-open orders under the
// transaction, locked against concurrent writers. Orders already in a
// terminal state are excluded, which keeps replayed cascades idempotent.
func (r *OrderRepository) FindCancellableInTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) ([]*domain.Order, error) {
	query, args, err := psql.Select(orderColumns...).
		From(ordersTable).
		Where(sq.And{
			sq.Eq{"user_id": userID},
			sq.Eq{"status": []string{
				string(domain.OrderStatusPending),
				string(domain.OrderStatusPendingPayment),
				string(domain.OrderStatusReady),
			}},
		}).
		OrderBy("created_at ASC").
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var rows []orderRow
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query cancellable orders: %w", err)
	}

	return convertRowsToOrders(rows)
}

// FindExpiredInTx loads, under the transaction, up to limit orders whose
// deadline passed while awaiting payment or pickup. SKIP LOCKED lets
// concurrent scanner instances split the work instead of serializing on it.
func (r *OrderRepository) FindExpiredInTx(ctx context.Context, tx *sqlx.Tx, now time.Time, limit int) ([]*domain.Order, error) {
	query, args, err := psql.Select(orderColumns...).
		From(ordersTable).
		Where(sq.And{
			sq.Eq{"status": []string{
				string(domain.OrderStatusPendingPayment),
				string(domain.OrderStatusReady),
			}},
			sq.Lt{"expires_at": now},
		}).
		OrderBy("expires_at ASC").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var rows []orderRow
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query expired orders: %w", err)
	}

	return convertRowsToOrders(rows)
}

func convertRowsToOrders(rows []orderRow) ([]*domain.Order, error) {
	orders := make([]*domain.Order, 0, len(rows))
	for _, row := range rows {
		order, err := convertRowToOrder(row)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, nil
}

func convertRowToOrder(row orderRow) (*domain.Order, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse id: %w", err)
	}

	userID, err := uuid.Parse(row.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user_id: %w", err)
	}

	status, ok := domain.ParseOrderStatus(row.Status)
	if !ok {
		return nil, fmt.Errorf("unknown order status: %q", row.Status)
	}

	return &domain.Order{
		ID:          id,
		UserID:      userID,
		Product:     row.Product,
		Quantity:    row.Quantity,
		Price:       row.Price,
		Status:      status,
		CreatedAt:   row.CreatedAt,
		ExpiresAt:   row.ExpiresAt,
		CancelledAt: row.CancelledAt,
	}, nil
}
