package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/ports"
)

// saveWatchdogTimeout bounds a command's database writes after the HTTP
// caller disconnects. The write is detached from the request context so a
// brief hang-up cannot tear the domain row from its outbox row.
const saveWatchdogTimeout = 15 * time.Second

type (
	UserService interface {
		CreateUser(ctx context.Context, name, email string) (*domain.User, error)
		ChangeUserStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus, reason string) (*domain.User, bool, error)
		FetchUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	}

	userService struct {
		userRepo   ports.UserRepository
		outboxRepo ports.OutboxRepository
		cacheRepo  ports.CacheRepository
		db         *sqlx.DB
		logger     infrastructure.Logger
		metrics    infrastructure.Metrics
	}
)

func NewUserService(
	userRepo ports.UserRepository,
	outboxRepo ports.OutboxRepository,
	cacheRepo ports.CacheRepository,
	db *sqlx.DB,
	logger infrastructure.Logger,
	metrics infrastructure.Metrics,
) UserService {
	return &userService{
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		cacheRepo:  cacheRepo,
		db:         db,
		logger:     logger,
		metrics:    metrics,
	}
}

func userCacheKey(id uuid.UUID) string {
	return "users:" + id.String()
}

// detachedSaveContext returns a context that survives a caller hang-up but
// still expires after the save watchdog, plus its cancel func.
func detachedSaveContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), saveWatchdogTimeout)
}

func (s *userService) CreateUser(ctx context.Context, name, email string) (*domain.User, error) {
	if name == "" {
		return nil, domain.NewValidationError("name must not be empty", domain.ErrInvalidRequest)
	}

	address, err := domain.NewEmailAddress(email)
	if err != nil {
		return nil, domain.NewValidationError("email is not valid", err)
	}

	saveCtx, cancel := detachedSaveContext(ctx)
	defer cancel()

	existing, err := s.userRepo.FindByEmail(saveCtx, address.String())
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing != nil {
		return nil, domain.NewConflictError("email is already registered", domain.ErrDuplicateEmail)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     address.String(),
		Status:    domain.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := s.db.BeginTxx(saveCtx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.userRepo.SaveInTx(saveCtx, tx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.NewConflictError("email is already registered", err)
		}

		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	outboxEvent := &domain.OutboxEvent{
		EventType:   domain.EventUserCreated,
		AggregateID: user.ID,
		Payload: domain.UserCreatedPayload{
			Id:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
		CreatedAt: now,
	}

	if err := s.outboxRepo.SaveInTx(saveCtx, tx, outboxEvent); err != nil {
		return nil, fmt.Errorf("failed to save outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.NewInternalServerError("failed to commit user creation", err)
	}

	s.cacheUser(saveCtx, user)

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("outbox_event_id", outboxEvent.ID.String()).
		Msg("user created")

	return user, nil
}

// ChangeUserStatus sets the user's lifecycle status. The bool reports whether
// anything changed; a same-status request is a no-op and writes no event.
func (s *userService) ChangeUserStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus, reason string) (*domain.User, bool, error) {
	saveCtx, cancel := detachedSaveContext(ctx)
	defer cancel()

	user, err := s.userRepo.FindByID(saveCtx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, false, domain.NewNotFoundError("user", id.String(), err)
		}

		return nil, false, fmt.Errorf("failed to load user: %w", err)
	}

	if user.Status == status {
		return user, false, nil
	}

	oldStatus := user.Status
	now := time.Now().UTC()

	tx, err := s.db.BeginTxx(saveCtx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.userRepo.UpdateStatusInTx(saveCtx, tx, id, status, now); err != nil {
		return nil, false, fmt.Errorf("failed to update user status: %w", err)
	}

	outboxEvent := &domain.OutboxEvent{
		EventType:   domain.EventUserStatusChanged,
		AggregateID: user.ID,
		Payload: domain.UserStatusChangedPayload{
			EventID:    uuid.New(),
			OccurredAt: now,
			UserID:     user.ID,
			OldStatus:  oldStatus,
			NewStatus:  status,
			Reason:     reason,
		},
		CreatedAt: now,
	}

	if err := s.outboxRepo.SaveInTx(saveCtx, tx, outboxEvent); err != nil {
		return nil, false, fmt.Errorf("failed to save outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, domain.NewInternalServerError("failed to commit status change", err)
	}

	user.Status = status
	user.UpdatedAt = now

	s.invalidateUser(saveCtx, id)

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("old_status", string(oldStatus)).
		Str("new_status", string(status)).
		Msg("user status changed")

	return user, true, nil
}

func (s *userService) FetchUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if s.cacheRepo != nil {
		if cached, err := s.cacheRepo.Get(ctx, userCacheKey(id)); err == nil && cached != nil {
			var user domain.User
			if err := json.Unmarshal(cached, &user); err == nil {
				return &user, nil
			}
		}
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NewNotFoundError("user", id.String(), err)
		}

		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	s.cacheUser(ctx, user)

	return user, nil
}

func (s *userService) cacheUser(ctx context.Context, user *domain.User) {
	if s.cacheRepo == nil {
		return
	}

	encoded, err := json.Marshal(user)
	if err != nil {
		return
	}

	if err := s.cacheRepo.Set(ctx, userCacheKey(user.ID), encoded, 0); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to cache user")
	}
}

func (s *userService) invalidateUser(ctx context.Context, id uuid.UUID) {
	if s.cacheRepo == nil {
		return
	}

	if err := s.cacheRepo.Delete(ctx, userCacheKey(id)); err != nil {
		s.logger.Warn().Err(err).Str("user_id", id.String()).Msg("failed to invalidate user cache")
	}
}
