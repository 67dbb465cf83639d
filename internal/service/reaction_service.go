package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/ports"
)

type (
	// ReactionService applies bus events and deadlines to local order state.
	// Both operations run in one transaction and re-check eligibility under
	// that transaction, so replays converge to the same end state without
	// duplicate follow-up events.
	ReactionService interface {
		CancelOrdersForInactiveUser(ctx context.Context, payload domain.UserStatusChangedPayload) (*domain.CancelUserOrdersResult, error)
		ExpireOrders(ctx context.Context, batchSize int) (*domain.ExpireOrdersResult, error)
	}

	reactionService struct {
		orderRepo  ports.OrderRepository
		outboxRepo ports.OutboxRepository
		cacheRepo  ports.CacheRepository
		db         *sqlx.DB
		logger     infrastructure.Logger
		metrics    infrastructure.Metrics
	}
)

func NewReactionService(
	orderRepo ports.OrderRepository,
	outboxRepo ports.OutboxRepository,
	cacheRepo ports.CacheRepository,
	db *sqlx.DB,
	logger infrastructure.Logger,
	metrics infrastructure.Metrics,
) ReactionService {
	return &reactionService{
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		cacheRepo:  cacheRepo,
		db:         db,
		logger:     logger,
		metrics:    metrics,
	}
}

// CancelOrdersForInactiveUser cancels every still-open order of a user whose
// status changed to Inactive, one cancellation event per order. Events with
// any other target status are ignored.
func (s *reactionService) CancelOrdersForInactiveUser(ctx context.Context, payload domain.UserStatusChangedPayload) (*domain.CancelUserOrdersResult, error) {
	result := &domain.CancelUserOrdersResult{UserID: payload.UserID}

	if payload.NewStatus != domain.UserStatusInactive {
		return result, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	orders, err := s.orderRepo.FindCancellableInTx(ctx, tx, payload.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cancellable orders: %w", err)
	}

	now := time.Now().UTC()

	for _, order := range orders {
		if !order.CancellableOnUserInactive() {
			continue
		}

		order.Cancel(now)

		if err := s.orderRepo.UpdateStatusInTx(ctx, tx, order); err != nil {
			return nil, fmt.Errorf("failed to cancel order %s: %w", order.ID, err)
		}

		outboxEvent := &domain.OutboxEvent{
			EventType:   domain.EventOrderCancelled,
			AggregateID: order.ID,
			Payload: domain.OrderCancelledPayload{
				EventID:    uuid.New(),
				OccurredAt: now,
				OrderID:    order.ID,
				UserID:     order.UserID,
				Reason:     domain.CancelReasonUserInactivated,
			},
			CreatedAt: now,
		}

		if err := s.outboxRepo.SaveInTx(ctx, tx, outboxEvent); err != nil {
			return nil, fmt.Errorf("failed to save outbox event for order %s: %w", order.ID, err)
		}

		result.CancelledOrders = append(result.CancelledOrders, order.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation cascade: %w", err)
	}

	s.invalidateOrders(ctx, result.CancelledOrders)

	s.logger.Info().
		Str("user_id", payload.UserID.String()).
		Int("cancelled_orders", len(result.CancelledOrders)).
		Msg("cancelled orders for inactivated user")

	return result, nil
}

// ExpireOrders transitions orders whose deadline passed to Expired and
// appends one cancellation event per order with the timeout reason.
func (s *reactionService) ExpireOrders(ctx context.Context, batchSize int) (*domain.ExpireOrdersResult, error) {
	result := &domain.ExpireOrdersResult{}
	now := time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	orders, err := s.orderRepo.FindExpiredInTx(ctx, tx, now, batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load expired orders: %w", err)
	}

	for _, order := range orders {
		if !order.Expirable(now) {
			continue
		}

		order.Status = domain.OrderStatusExpired

		if err := s.orderRepo.UpdateStatusInTx(ctx, tx, order); err != nil {
			return nil, fmt.Errorf("failed to expire order %s: %w", order.ID, err)
		}

		outboxEvent := &domain.OutboxEvent{
			EventType:   domain.EventOrderCancelled,
			AggregateID: order.ID,
			Payload: domain.OrderCancelledPayload{
				EventID:    uuid.New(),
				OccurredAt: now,
				OrderID:    order.ID,
				UserID:     order.UserID,
				Reason:     domain.CancelReasonTimeout,
			},
			CreatedAt: now,
		}

		if err := s.outboxRepo.SaveInTx(ctx, tx, outboxEvent); err != nil {
			return nil, fmt.Errorf("failed to save outbox event for order %s: %w", order.ID, err)
		}

		result.ExpiredOrders = append(result.ExpiredOrders, order.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expiry sweep: %w", err)
	}

	if n := len(result.ExpiredOrders); n > 0 {
		s.metrics.RecordExpiredOrders(ctx, int64(n))

		s.logger.Info().
			Int("expired_orders", n).
			Msg("expired overdue orders")
	}

	s.invalidateOrders(ctx, result.ExpiredOrders)

	return result, nil
}

func (s *reactionService) invalidateOrders(ctx context.Context, ids []uuid.UUID) {
	if s.cacheRepo == nil {
		return
	}

	for _, id := range ids {
		if err := s.cacheRepo.Delete(ctx, orderCacheKey(id)); err != nil {
			s.logger.Warn().Err(err).Str("order_id", id.String()).Msg("failed to invalidate order cache")
		}
	}
}
