package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mjolner/svc-commerce-events/internal/domain"
)

const usersTable = "users"

type (
	UserRepository struct {
		conn *sqlx.DB
	}

	userRow struct {
		ID        string    `db:"id"`
		Name      string    `db:"name"`
		Email     string    `db:"email"`
		Status    string    `db:"status"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}
)

var userColumns = []string{"id", "name", "email", "status", "created_at", "updated_at"}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{
		conn: db,
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, sq.Eq{"email": strings.ToLower(email)})
}

func (r *UserRepository) findOne(ctx context.Context, criteria sq.Sqlizer) (*domain.User, error) {
	query, args, err := psql.Select(userColumns...).
		From(usersTable).
		Where(criteria).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var row userRow
	if err := r.conn.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}

		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return convertRowToUser(row)
}

// SaveInTx inserts the user within the caller's transaction. A unique
// violation on the email column maps to the duplicate-email error so the
// handler can answer with a conflict.
func (r *UserRepository) SaveInTx(ctx context.Context, tx *sqlx.Tx, user *domain.User) error {
	query, args, err := psql.Insert(usersTable).
		Columns(userColumns...).
		Values(user.ID, user.Name, strings.ToLower(user.Email), user.Status, user.CreatedAt, user.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}

		return fmt.Errorf("failed to save user: %w", err)
	}

	return nil
}

func (r *UserRepository) UpdateStatusInTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status domain.UserStatus, updatedAt time.Time) error {
	query, args, err := psql.Update(usersTable).
		Set("status", status).
		Set("updated_at", updatedAt).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

func convertRowToUser(row userRow) (*domain.User, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse id: %w", err)
	}

	status, ok := domain.ParseUserStatus(row.Status)
	if !ok {
		return nil, fmt.Errorf("unknown user status: %q", row.Status)
	}

	return &domain.User{
		ID:        id,
		Name:      row.Name,
		Email:     row.Email,
		Status:    status,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	return false
}
