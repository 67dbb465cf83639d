package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderExpirable(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	cases := []struct {
		name      string
		status    OrderStatus
		expiresAt time.Time
		want      bool
	}{
		{name: "pending payment past deadline", status: OrderStatusPendingPayment, expiresAt: past, want: true},
		{name: "ready past deadline", status: OrderStatusReady, expiresAt: past, want: true},
		{name: "pending payment before deadline", status: OrderStatusPendingPayment, expiresAt: future, want: false},
		{name: "ready before deadline", status: OrderStatusReady, expiresAt: future, want: false},
		{name: "pending never expires", status: OrderStatusPending, expiresAt: past, want: false},
		{name: "completed never expires", status: OrderStatusCompleted, expiresAt: past, want: false},
		{name: "cancelled never expires", status: OrderStatusCancelled, expiresAt: past, want: false},
		{name: "expired stays settled", status: OrderStatusExpired, expiresAt: past, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			order := &Order{Status: tc.status, ExpiresAt: tc.expiresAt}
			assert.Equal(t, tc.want, order.Expirable(now))
		})
	}
}

func TestOrderCancellableOnUserInactive(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status OrderStatus
		want   bool
	}{
		{status: OrderStatusPending, want: true},
		{status: OrderStatusPendingPayment, want: true},
		{status: OrderStatusReady, want: true},
		{status: OrderStatusCompleted, want: false},
		{status: OrderStatusCancelled, want: false},
		{status: OrderStatusExpired, want: false},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			t.Parallel()

			order := &Order{Status: tc.status}
			assert.Equal(t, tc.want, order.CancellableOnUserInactive())
		})
	}
}

func TestOrderCancelStampsTimestamp(t *testing.T) {
	t.Parallel()

	at := time.Now().UTC()
	order := &Order{Status: OrderStatusReady}

	order.Cancel(at)

	assert.Equal(t, OrderStatusCancelled, order.Status)
	require.NotNil(t, order.CancelledAt)
	assert.Equal(t, at, *order.CancelledAt)
}
