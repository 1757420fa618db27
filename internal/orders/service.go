package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/db/models"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/enums"
	pkgerrors "github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/errors"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order lifecycle operations beyond repository reads.
type Service interface {
	GetOrder(ctx context.Context, input GetOrderInput) (*OrderDetail, error)
	ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error)
	ListSellerItems(ctx context.Context, sellerID uuid.UUID, params pagination.Params, filters SellerItemFilters) (*SellerItemList, error)
	ListOrdersByStatus(ctx context.Context, status enums.OrderStatus, params pagination.Params) (*OrderList, error)
	Cancel(ctx context.Context, input CancelInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	UpdateItemFulfillment(ctx context.Context, input ItemFulfillmentInput) (*models.OrderItem, error)
}

type service struct {
	repo Repository
	tx   txRunner
	now  func() time.Time
}

// GetOrderInput identifies the order and the actor requesting it.
type GetOrderInput struct {
	OrderID uuid.UUID
	ActorID uuid.UUID
	IsAdmin bool
}

// CancelInput captures a buyer or admin cancellation request.
type CancelInput struct {
	OrderID uuid.UUID
	ActorID uuid.UUID
	IsAdmin bool
	Reason  *string
}

// UpdateStatusInput moves an order through the fulfillment flow. Sellers with
// a line in the order and admins may drive any manual target; the buyer may
// confirm receipt by moving their order to delivered or completed.
type UpdateStatusInput struct {
	OrderID        uuid.UUID
	ActorID        uuid.UUID
	IsAdmin        bool
	Target         enums.OrderStatus
	TrackingNumber *string
}

// ItemFulfillmentInput captures a seller's update to one of their lines.
type ItemFulfillmentInput struct {
	ItemID         uuid.UUID
	ActorID        uuid.UUID
	IsAdmin        bool
	Target         enums.FulfillmentStatus
	TrackingNumber *string
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo: repo,
		tx:   tx,
		now:  time.Now,
	}, nil
}

func (s *service) GetOrder(ctx context.Context, input GetOrderInput) (*OrderDetail, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	order, err := s.repo.FindOrderWithItems(ctx, input.OrderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if !input.IsAdmin && order.BuyerID != input.ActorID && !sellsInOrder(order.Items, input.ActorID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}

	return &OrderDetail{Order: *order, Items: order.Items}, nil
}

func (s *service) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListBuyerOrders(ctx, buyerID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buyer orders")
	}
	return list, nil
}

func (s *service) ListSellerItems(ctx context.Context, sellerID uuid.UUID, params pagination.Params, filters SellerItemFilters) (*SellerItemList, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListSellerItems(ctx, sellerID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller items")
	}
	return list, nil
}

// ListOrdersByStatus returns every order in the given status. Role checks
// live at the routing layer, this is an admin-only view.
func (s *service) ListOrdersByStatus(ctx context.Context, status enums.OrderStatus, params pagination.Params) (*OrderList, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	list, err := s.repo.ListOrdersByStatus(ctx, status, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders by status")
	}
	return list, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var cancelled *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrderForUpdate(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !input.IsAdmin && order.BuyerID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}

		expectedVersion := order.Version
		if err := ApplyTransition(order, enums.OrderStatusCancelled, s.now().UTC()); err != nil {
			return stateConflict(err)
		}

		updates := TransitionUpdates(order)
		if input.Reason != nil {
			order.CancelReason = input.Reason
			updates["cancel_reason"] = *input.Reason
		}

		if err := repo.UpdateOrder(ctx, order.ID, expectedVersion, updates); err != nil {
			return persistConflict(err, "cancel order")
		}

		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !isManualTarget(input.Target) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status cannot be set directly")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrderForUpdate(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if !input.IsAdmin && !buyerConfirms(order, input.ActorID, input.Target) {
			items, err := repo.FindItemsByOrder(ctx, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
			}
			if !sellsInOrder(items, input.ActorID) {
				return pkgerrors.New(pkgerrors.CodeForbidden, "order has no items sold by user")
			}
		}

		if input.Target == enums.OrderStatusShipped && input.TrackingNumber == nil && order.TrackingNumber == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "tracking number required to mark shipped")
		}

		expectedVersion := order.Version
		if err := ApplyTransition(order, input.Target, s.now().UTC()); err != nil {
			return stateConflict(err)
		}

		updates := TransitionUpdates(order)
		if input.TrackingNumber != nil {
			order.TrackingNumber = input.TrackingNumber
			updates["tracking_number"] = *input.TrackingNumber
		}

		if err := repo.UpdateOrder(ctx, order.ID, expectedVersion, updates); err != nil {
			return persistConflict(err, "update order status")
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) UpdateItemFulfillment(ctx context.Context, input ItemFulfillmentInput) (*models.OrderItem, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fulfillment status")
	}

	var updated *models.OrderItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := repo.FindItem(ctx, input.ItemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
		}
		if !input.IsAdmin && item.SellerID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "item does not belong to seller")
		}

		order, err := repo.FindOrderForUpdate(ctx, item.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !fulfillableOrderStatus(order.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not in a fulfillable state")
		}

		if !canTransitionFulfillment(item.FulfillmentStatus, input.Target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move item from %s to %s", item.FulfillmentStatus, input.Target))
		}

		now := s.now().UTC()
		updates := map[string]any{"fulfillment_status": input.Target}
		switch input.Target {
		case enums.FulfillmentStatusShipped:
			updates["shipped_at"] = now
			item.ShippedAt = &now
			if input.TrackingNumber != nil {
				updates["tracking_number"] = *input.TrackingNumber
				item.TrackingNumber = input.TrackingNumber
			}
		case enums.FulfillmentStatusDelivered:
			updates["delivered_at"] = now
			item.DeliveredAt = &now
		case enums.FulfillmentStatusCompleted:
			updates["completed_at"] = now
			item.CompletedAt = &now
		}
		item.FulfillmentStatus = input.Target

		if err := repo.UpdateOrderItem(ctx, item.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item fulfillment")
		}

		if err := s.reconcileOrderStatus(ctx, repo, order, now); err != nil {
			return err
		}

		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// reconcileOrderStatus advances the order when its items collectively reach a
// later stage. Orders only move forward here, never backward.
func (s *service) reconcileOrderStatus(ctx context.Context, repo Repository, order *models.Order, now time.Time) error {
	items, err := repo.FindItemsByOrder(ctx, order.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order items")
	}
	if len(items) == 0 {
		return nil
	}

	minRank := fulfillmentRank(items[0].FulfillmentStatus)
	maxRank := minRank
	for _, item := range items[1:] {
		rank := fulfillmentRank(item.FulfillmentStatus)
		if rank < minRank {
			minRank = rank
		}
		if rank > maxRank {
			maxRank = rank
		}
	}

	expectedVersion := order.Version
	advanced := false

	advance := func(target enums.OrderStatus) error {
		if err := ApplyTransition(order, target, now); err != nil {
			return stateConflict(err)
		}
		advanced = true
		return nil
	}

	if order.Status == enums.OrderStatusPaid && maxRank > fulfillmentRank(enums.FulfillmentStatusPending) {
		if err := advance(enums.OrderStatusProcessing); err != nil {
			return err
		}
	}
	if order.Status == enums.OrderStatusProcessing && minRank >= fulfillmentRank(enums.FulfillmentStatusShipped) {
		if err := advance(enums.OrderStatusShipped); err != nil {
			return err
		}
	}
	if order.Status == enums.OrderStatusShipped && minRank >= fulfillmentRank(enums.FulfillmentStatusDelivered) {
		if err := advance(enums.OrderStatusDelivered); err != nil {
			return err
		}
	}
	if order.Status == enums.OrderStatusDelivered && minRank >= fulfillmentRank(enums.FulfillmentStatusCompleted) {
		if err := advance(enums.OrderStatusCompleted); err != nil {
			return err
		}
	}

	if !advanced {
		return nil
	}
	if err := repo.UpdateOrder(ctx, order.ID, expectedVersion, TransitionUpdates(order)); err != nil {
		return persistConflict(err, "reconcile order status")
	}
	return nil
}

var manualTargets = map[enums.OrderStatus]bool{
	enums.OrderStatusProcessing: true,
	enums.OrderStatusShipped:    true,
	enums.OrderStatusDelivered:  true,
	enums.OrderStatusCompleted:  true,
	enums.OrderStatusCancelled:  true,
}

// isManualTarget filters out states owned by the checkout, payment, and
// refund flows.
func isManualTarget(target enums.OrderStatus) bool {
	return manualTargets[target]
}

var fulfillmentRanks = map[enums.FulfillmentStatus]int{
	enums.FulfillmentStatusPending:    0,
	enums.FulfillmentStatusProcessing: 1,
	enums.FulfillmentStatusShipped:    2,
	enums.FulfillmentStatusDelivered:  3,
	enums.FulfillmentStatusCompleted:  4,
}

func fulfillmentRank(status enums.FulfillmentStatus) int {
	return fulfillmentRanks[status]
}

func canTransitionFulfillment(from, to enums.FulfillmentStatus) bool {
	fromRank := fulfillmentRank(from)
	toRank := fulfillmentRank(to)
	// forward only, one stage at a time, except pending may jump straight to shipped
	if toRank == fromRank+1 {
		return true
	}
	return from == enums.FulfillmentStatusPending && to == enums.FulfillmentStatusShipped
}

func fulfillableOrderStatus(status enums.OrderStatus) bool {
	switch status {
	case enums.OrderStatusPaid, enums.OrderStatusProcessing, enums.OrderStatusShipped, enums.OrderStatusDelivered:
		return true
	default:
		return false
	}
}

// buyerConfirms reports whether the actor is the order's buyer confirming
// receipt. Buyers only drive the two confirmation targets; everything earlier
// in the flow belongs to sellers and admins.
func buyerConfirms(order *models.Order, actorID uuid.UUID, target enums.OrderStatus) bool {
	if order.BuyerID != actorID {
		return false
	}
	return target == enums.OrderStatusDelivered || target == enums.OrderStatusCompleted
}

func sellsInOrder(items []models.OrderItem, sellerID uuid.UUID) bool {
	for _, item := range items {
		if item.SellerID == sellerID {
			return true
		}
	}
	return false
}

func stateConflict(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "order state transition rejected").
		WithDetails(err.Error())
}

func persistConflict(err error, msg string) error {
	if err == ErrStaleOrder {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order changed concurrently, retry")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
