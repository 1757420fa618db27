package orders

import (
	"fmt"
	"time"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/db/models"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/enums"
)

// InvalidTransitionError reports a disallowed order status change. Callers get
// the exact from/to pair instead of a silent no-op.
type InvalidTransitionError struct {
	From enums.OrderStatus
	To   enums.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusCart:           {enums.OrderStatusPendingPayment, enums.OrderStatusCancelled},
	enums.OrderStatusPendingPayment: {enums.OrderStatusPaid, enums.OrderStatusCancelled},
	enums.OrderStatusPaid:           {enums.OrderStatusProcessing, enums.OrderStatusCancelled, enums.OrderStatusRefunded},
	enums.OrderStatusProcessing:     {enums.OrderStatusShipped, enums.OrderStatusCancelled, enums.OrderStatusRefunded},
	enums.OrderStatusShipped:        {enums.OrderStatusDelivered, enums.OrderStatusRefunded},
	enums.OrderStatusDelivered:      {enums.OrderStatusCompleted, enums.OrderStatusRefunded},
	enums.OrderStatusCompleted:      {enums.OrderStatusRefunded},
	enums.OrderStatusCancelled:      {enums.OrderStatusRefunded},
	enums.OrderStatusRefunded:       {},
}

// CanTransition reports whether the status change is allowed by the lifecycle.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ApplyTransition validates and applies a status change in memory: it moves
// the status, bumps the optimistic version, and stamps the lifecycle timestamp
// for the new state if it has not been stamped before. Persisting the change
// is the caller's job.
func ApplyTransition(order *models.Order, to enums.OrderStatus, now time.Time) error {
	if !CanTransition(order.Status, to) {
		return &InvalidTransitionError{From: order.Status, To: to}
	}

	order.Status = to
	order.Version++
	stampTransition(order, to, now)
	return nil
}

func stampTransition(order *models.Order, to enums.OrderStatus, now time.Time) {
	set := func(field **time.Time) {
		if *field == nil {
			t := now
			*field = &t
		}
	}

	switch to {
	case enums.OrderStatusPendingPayment:
		set(&order.SubmittedAt)
	case enums.OrderStatusPaid:
		set(&order.PaidAt)
	case enums.OrderStatusProcessing:
		set(&order.ProcessingAt)
	case enums.OrderStatusShipped:
		set(&order.ShippedAt)
	case enums.OrderStatusDelivered:
		set(&order.DeliveredAt)
	case enums.OrderStatusCompleted:
		set(&order.CompletedAt)
	case enums.OrderStatusCancelled:
		set(&order.CancelledAt)
	case enums.OrderStatusRefunded:
		set(&order.RefundedAt)
	}
}

// TransitionUpdates returns the column map persisting an applied transition,
// guarded by the version the order held before ApplyTransition ran.
func TransitionUpdates(order *models.Order) map[string]any {
	updates := map[string]any{
		"status":  order.Status,
		"version": order.Version,
	}

	addStamp := func(column string, value *time.Time) {
		if value != nil {
			updates[column] = *value
		}
	}
	addStamp("submitted_at", order.SubmittedAt)
	addStamp("paid_at", order.PaidAt)
	addStamp("processing_at", order.ProcessingAt)
	addStamp("shipped_at", order.ShippedAt)
	addStamp("delivered_at", order.DeliveredAt)
	addStamp("completed_at", order.CompletedAt)
	addStamp("cancelled_at", order.CancelledAt)
	addStamp("refunded_at", order.RefundedAt)

	return updates
}
