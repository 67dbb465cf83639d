package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mjolner/svc-commerce-events/internal/config"
	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/ports"
)

type (
	OrderService interface {
		CreateOrder(ctx context.Context, userID uuid.UUID, product string, quantity int, price float64) (*domain.Order, error)
		UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, reason string) (*domain.Order, bool, error)
		FetchOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
		ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	}

	orderService struct {
		orderRepo  ports.OrderRepository
		outboxRepo ports.OutboxRepository
		cacheRepo  ports.CacheRepository
		userProbe  ports.UserProbe
		db         *sqlx.DB
		expiryCfg  config.ExpiryConfig
		logger     infrastructure.Logger
		metrics    infrastructure.Metrics
	}
)

func NewOrderService(
	orderRepo ports.OrderRepository,
	outboxRepo ports.OutboxRepository,
	cacheRepo ports.CacheRepository,
	userProbe ports.UserProbe,
	db *sqlx.DB,
	expiryCfg config.ExpiryConfig,
	logger infrastructure.Logger,
	metrics infrastructure.Metrics,
) OrderService {
	return &orderService{
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		cacheRepo:  cacheRepo,
		userProbe:  userProbe,
		db:         db,
		expiryCfg:  expiryCfg,
		logger:     logger,
		metrics:    metrics,
	}
}

func orderCacheKey(id uuid.UUID) string {
	return "orders:" + id.String()
}

func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, product string, quantity int, price float64) (*domain.Order, error) {
	if product == "" {
		return nil, domain.NewValidationError("product must not be empty", domain.ErrInvalidRequest)
	}
	if quantity < 1 {
		return nil, domain.NewValidationError("quantity must be at least 1", domain.ErrInvalidRequest)
	}
	if price <= 0 {
		return nil, domain.NewValidationError("price must be positive", domain.ErrInvalidRequest)
	}

	// The probe runs on the caller's context so a hang-up before the
	// transaction starts surfaces as a client-closed request.
	owner, err := s.userProbe.FetchUser(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return nil, domain.NewValidationError("order owner does not exist", err)
		case errors.Is(err, domain.ErrRequestCancelled):
			return nil, domain.NewCancelledError(err)
		default:
			return nil, domain.NewServiceUnavailableError("user service is unavailable", err)
		}
	}

	if !owner.IsActive() {
		return nil, domain.NewValidationError("order owner is not active", domain.ErrInvalidRequest)
	}

	saveCtx, cancel := detachedSaveContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	order := &domain.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Product:   product,
		Quantity:  quantity,
		Price:     price,
		Status:    domain.OrderStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(s.expiryCfg.OrderExpiryDefault),
	}

	tx, err := s.db.BeginTxx(saveCtx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.orderRepo.SaveInTx(saveCtx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	outboxEvent := &domain.OutboxEvent{
		EventType:   domain.EventOrderCreated,
		AggregateID: order.ID,
		Payload: domain.OrderCreatedPayload{
			ID:       order.ID,
			UserID:   order.UserID,
			Product:  order.Product,
			Quantity: order.Quantity,
			Price:    order.Price,
			Status:   order.Status,
		},
		CreatedAt: now,
	}

	if err := s.outboxRepo.SaveInTx(saveCtx, tx, outboxEvent); err != nil {
		return nil, fmt.Errorf("failed to save outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.NewInternalServerError("failed to commit order creation", err)
	}

	s.cacheOrder(saveCtx, order)

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", userID.String()).
		Str("outbox_event_id", outboxEvent.ID.String()).
		Msg("order created")

	return order, nil
}

// UpdateOrderStatus moves the order to the target status. The bool reports
// whether anything changed; a same-status request writes no event. Moving to
// Cancelled stamps the cancellation timestamp, any other target clears it.
func (s *orderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, reason string) (*domain.Order, bool, error) {
	saveCtx, cancel := detachedSaveContext(ctx)
	defer cancel()

	order, err := s.orderRepo.FindByID(saveCtx, id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, false, domain.NewNotFoundError("order", id.String(), err)
		}

		return nil, false, fmt.Errorf("failed to load order: %w", err)
	}

	if order.Status == status {
		return order, false, nil
	}

	oldStatus := order.Status
	now := time.Now().UTC()

	if status == domain.OrderStatusCancelled {
		order.Cancel(now)
	} else {
		order.Status = status
		order.CancelledAt = nil
	}

	tx, err := s.db.BeginTxx(saveCtx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.orderRepo.UpdateStatusInTx(saveCtx, tx, order); err != nil {
		return nil, false, fmt.Errorf("failed to update order status: %w", err)
	}

	outboxEvent := &domain.OutboxEvent{
		EventType:   domain.EventOrderStatusChanged,
		AggregateID: order.ID,
		Payload: domain.OrderStatusChangedPayload{
			EventID:    uuid.New(),
			OccurredAt: now,
			OrderID:    order.ID,
			UserID:     order.UserID,
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

	s.invalidateOrder(saveCtx, id)

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("old_status", string(oldStatus)).
		Str("new_status", string(status)).
		Msg("order status changed")

	return order, true, nil
}

func (s *orderService) FetchOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	if s.cacheRepo != nil {
		if cached, err := s.cacheRepo.Get(ctx, orderCacheKey(id)); err == nil && cached != nil {
			var order domain.Order
			if err := json.Unmarshal(cached, &order); err == nil {
				return &order, nil
			}
		}
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, domain.NewNotFoundError("order", id.String(), err)
		}

		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	s.cacheOrder(ctx, order)

	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

func (s *orderService) cacheOrder(ctx context.Context, order *domain.Order) {
	if s.cacheRepo == nil {
		return
	}

	encoded, err := json.Marshal(order)
	if err != nil {
		return
	}

	if err := s.cacheRepo.Set(ctx, orderCacheKey(order.ID), encoded, 0); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("failed to cache order")
	}
}

func (s *orderService) invalidateOrder(ctx context.Context, id uuid.UUID) {
	if s.cacheRepo == nil {
		return
	}

	if err := s.cacheRepo.Delete(ctx, orderCacheKey(id)); err != nil {
		s.logger.Warn().Err(err).Str("order_id", id.String()).Msg("failed to invalidate order cache")
	}
}
