package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/db/models"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/enums"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from, to enums.OrderStatus
	}{
		{enums.OrderStatusCart, enums.OrderStatusPendingPayment},
		{enums.OrderStatusPendingPayment, enums.OrderStatusPaid},
		{enums.OrderStatusPendingPayment, enums.OrderStatusCancelled},
		{enums.OrderStatusPaid, enums.OrderStatusProcessing},
		{enums.OrderStatusProcessing, enums.OrderStatusShipped},
		{enums.OrderStatusShipped, enums.OrderStatusDelivered},
		{enums.OrderStatusDelivered, enums.OrderStatusCompleted},
		{enums.OrderStatusCancelled, enums.OrderStatusRefunded},
		{enums.OrderStatusCompleted, enums.OrderStatusRefunded},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct {
		from, to enums.OrderStatus
	}{
		{enums.OrderStatusCart, enums.OrderStatusPaid},
		{enums.OrderStatusPaid, enums.OrderStatusDelivered},
		{enums.OrderStatusShipped, enums.OrderStatusCancelled},
		{enums.OrderStatusDelivered, enums.OrderStatusShipped},
		{enums.OrderStatusRefunded, enums.OrderStatusPaid},
		{enums.OrderStatusCompleted, enums.OrderStatusCancelled},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}

func TestApplyTransition_StampsAndBumpsVersion(t *testing.T) {
	now := time.Date(2025, 10, 3, 12, 0, 0, 0, time.UTC)
	order := &models.Order{Status: enums.OrderStatusPendingPayment, Version: 3}

	require.NoError(t, ApplyTransition(order, enums.OrderStatusPaid, now))

	assert.Equal(t, enums.OrderStatusPaid, order.Status)
	assert.Equal(t, 4, order.Version)
	require.NotNil(t, order.PaidAt)
	assert.Equal(t, now, *order.PaidAt)
}

func TestApplyTransition_InvalidReturnsTypedError(t *testing.T) {
	order := &models.Order{Status: enums.OrderStatusCart}

	err := ApplyTransition(order, enums.OrderStatusShipped, time.Now())
	require.Error(t, err)

	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, enums.OrderStatusCart, invalid.From)
	assert.Equal(t, enums.OrderStatusShipped, invalid.To)

	// order untouched on rejection
	assert.Equal(t, enums.OrderStatusCart, order.Status)
	assert.Equal(t, 0, order.Version)
}

func TestApplyTransition_DoesNotRestamp(t *testing.T) {
	earlier := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	order := &models.Order{
		Status:      enums.OrderStatusCancelled,
		CancelledAt: &earlier,
		RefundedAt:  nil,
	}

	now := time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ApplyTransition(order, enums.OrderStatusRefunded, now))
	require.NotNil(t, order.RefundedAt)
	assert.Equal(t, now, *order.RefundedAt)
	assert.Equal(t, earlier, *order.CancelledAt)
}

func TestTransitionUpdates_IncludesStatusVersionAndStamps(t *testing.T) {
	now := time.Date(2025, 10, 3, 12, 0, 0, 0, time.UTC)
	order := &models.Order{Status: enums.OrderStatusPaid, Version: 1}
	require.NoError(t, ApplyTransition(order, enums.OrderStatusProcessing, now))

	updates := TransitionUpdates(order)
	assert.Equal(t, enums.OrderStatusProcessing, updates["status"])
	assert.Equal(t, 2, updates["version"])
	assert.Equal(t, now, updates["processing_at"])
	_, hasShipped := updates["shipped_at"]
	assert.False(t, hasShipped)
}
