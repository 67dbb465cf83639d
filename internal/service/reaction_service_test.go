package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
)

func TestCancelOrdersIgnoresNonInactivationEvents(t *testing.T) {
	t.Parallel()

	svc := NewReactionService(
		nil,
		&fakeOutboxRepo{},
		newFakeCacheRepo(),
		nil,
		infrastructure.NewTestLogger(),
		&infrastructure.NoOpMetrics{},
	)

	// A reactivation replay must not touch the database at all, which is why
	// nil repositories are safe here.
	result, err := svc.CancelOrdersForInactiveUser(context.Background(), domain.UserStatusChangedPayload{
		EventID:    uuid.New(),
		OccurredAt: time.Now().UTC(),
		UserID:     uuid.New(),
		OldStatus:  domain.UserStatusInactive,
		NewStatus:  domain.UserStatusActive,
	})
	require.NoError(t, err)
	require.Empty(t, result.CancelledOrders)
}
