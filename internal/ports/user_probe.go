package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/mjolner/svc-commerce-events/internal/domain"
)

// UserProbe is the synchronous read-only check the orders service runs
// against the users service before accepting an order.
type UserProbe interface {
	FetchUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
