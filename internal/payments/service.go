package payments

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/internal/orders"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/internal/paymentmethods"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/db"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/db/models"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/enums"
	pkgerrors "github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/errors"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/gateway"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/pagination"
)

const orderNumberAttempts = 5

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ProcessPaymentInput charges the buyer's stored method for a submitted order.
type ProcessPaymentInput struct {
	OrderID         uuid.UUID
	BuyerID         uuid.UUID
	PaymentMethodID uuid.UUID
}

// RefundInput reverses a settled charge. Full refund when Amount is nil.
type RefundInput struct {
	OrderID uuid.UUID
	ActorID uuid.UUID
	IsAdmin bool
	Amount  *decimal.Decimal
	Reason  *string
}

// PaymentResult pairs the updated order with its ledger entry.
type PaymentResult struct {
	Order       *models.Order       `json:"order"`
	Transaction *models.Transaction `json:"transaction"`
}

// Service runs charges and refunds through the gateway and keeps the
// transaction ledger consistent with order state.
type Service interface {
	ProcessPayment(ctx context.Context, input ProcessPaymentInput) (*PaymentResult, error)
	ProcessRefund(ctx context.Context, input RefundInput) (*PaymentResult, error)
	GetTransaction(ctx context.Context, txnID, actorID uuid.UUID, isAdmin bool) (*models.Transaction, error)
	ListUserTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) (*TransactionList, error)
	ListOrderTransactions(ctx context.Context, orderID, actorID uuid.UUID, isAdmin bool) ([]models.Transaction, error)
}

type service struct {
	repo      Repository
	orders    orders.Repository
	methods   paymentmethods.Repository
	gw        gateway.Gateway
	tx        txRunner
	now       func() time.Time
	numberGen func(time.Time) string
}

// NewService builds the payments service with the required dependencies.
func NewService(repo Repository, orderRepo orders.Repository, methodRepo paymentmethods.Repository, gw gateway.Gateway, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if methodRepo == nil {
		return nil, fmt.Errorf("payment methods repository required")
	}
	if gw == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:      repo,
		orders:    orderRepo,
		methods:   methodRepo,
		gw:        gw,
		tx:        tx,
		now:       time.Now,
		numberGen: generateOrderNumber,
	}, nil
}

func (s *service) ProcessPayment(ctx context.Context, input ProcessPaymentInput) (*PaymentResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.PaymentMethodID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method id required")
	}

	var result *PaymentResult
	var declined error
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)

		order, err := orderRepo.FindOrderForUpdate(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.BuyerID != input.BuyerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}
		if order.Status != enums.OrderStatusPendingPayment {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order in state %s cannot be paid", order.Status))
		}

		method, err := s.loadChargeableMethod(ctx, tx, input.BuyerID, input.PaymentMethodID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		txn, err := repo.CreateTransaction(ctx, &models.Transaction{
			OrderID:         order.ID,
			UserID:          input.BuyerID,
			PaymentMethodID: &method.ID,
			Amount:          order.TotalAmount,
			Status:          enums.TransactionStatusPending,
			PaymentGateway:  s.gw.Name(),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment attempt")
		}

		charge, err := s.gw.Charge(ctx, gateway.ChargeRequest{
			OrderNumberHint: order.ID.String(),
			Token:           method.Token,
			Amount:          order.TotalAmount,
		})
		if err != nil {
			if !errors.Is(err, gateway.ErrDeclined) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "charge failed")
			}
			reason := err.Error()
			updates := map[string]any{
				"status":         enums.TransactionStatusFailed,
				"failure_reason": reason,
				"processed_at":   now,
			}
			if uerr := repo.UpdateTransaction(ctx, txn.ID, updates); uerr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, uerr, "record failed charge")
			}
			// commit the failed attempt, surface the decline afterwards
			declined = pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payment was declined").
				WithDetails(reason)
			return nil
		}

		if err := repo.UpdateTransaction(ctx, txn.ID, map[string]any{
			"status":                 enums.TransactionStatusCompleted,
			"gateway_transaction_id": charge.TransactionID,
			"gateway_response":       charge.Response,
			"processed_at":           now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record completed charge")
		}

		expectedVersion := order.Version
		if err := orders.ApplyTransition(order, enums.OrderStatusPaid, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "mark order paid").
				WithDetails(err.Error())
		}
		if err := s.assignOrderNumber(ctx, tx, orderRepo, order, expectedVersion, now); err != nil {
			return err
		}

		txn, err = repo.FindTransaction(ctx, txn.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload transaction")
		}
		result = &PaymentResult{Order: order, Transaction: txn}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if declined != nil {
		return nil, declined
	}
	return result, nil
}

func (s *service) ProcessRefund(ctx context.Context, input RefundInput) (*PaymentResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.IsAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "refunds require admin role")
	}
	if input.Amount != nil && !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}

	var result *PaymentResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)

		order, err := orderRepo.FindOrderForUpdate(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !orders.CanTransition(order.Status, enums.OrderStatusRefunded) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order in state %s cannot be refunded", order.Status))
		}

		charge, err := repo.FindCompletedCharge(ctx, order.ID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order has no settled charge")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settled charge")
		}
		if charge.GatewayTransactionID == nil {
			return pkgerrors.New(pkgerrors.CodeInternal, "settled charge has no gateway reference")
		}

		amount := charge.Amount
		if input.Amount != nil {
			amount = *input.Amount
		}
		if amount.GreaterThan(charge.Amount) {
			return pkgerrors.New(pkgerrors.CodeValidation, "refund exceeds the original charge")
		}

		refund, err := s.gw.Refund(ctx, gateway.RefundRequest{
			TransactionID: *charge.GatewayTransactionID,
			Amount:        amount,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "gateway refund failed")
		}

		now := s.now().UTC()
		refundTxn, err := repo.CreateTransaction(ctx, &models.Transaction{
			OrderID:              order.ID,
			UserID:               charge.UserID,
			PaymentMethodID:      charge.PaymentMethodID,
			Amount:               amount.Neg(),
			Status:               enums.TransactionStatusCompleted,
			PaymentGateway:       s.gw.Name(),
			GatewayTransactionID: &refund.RefundID,
			GatewayResponse:      &refund.Response,
			FailureReason:        input.Reason,
			ProcessedAt:          &now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record refund")
		}

		if err := repo.UpdateTransaction(ctx, charge.ID, map[string]any{
			"status":        enums.TransactionStatusRefunded,
			"refund_amount": amount,
			"refunded_at":   now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark charge refunded")
		}

		expectedVersion := order.Version
		if err := orders.ApplyTransition(order, enums.OrderStatusRefunded, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "mark order refunded").
				WithDetails(err.Error())
		}
		if err := orderRepo.UpdateOrder(ctx, order.ID, expectedVersion, orders.TransitionUpdates(order)); err != nil {
			if err == orders.ErrStaleOrder {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order changed concurrently, retry")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist refunded order")
		}

		result = &PaymentResult{Order: order, Transaction: refundTxn}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) GetTransaction(ctx context.Context, txnID, actorID uuid.UUID, isAdmin bool) (*models.Transaction, error) {
	if txnID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	txn, err := s.repo.FindTransaction(ctx, txnID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	if !isAdmin && txn.UserID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "transaction does not belong to user")
	}
	return txn, nil
}

func (s *service) ListUserTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) (*TransactionList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}
	return list, nil
}

func (s *service) ListOrderTransactions(ctx context.Context, orderID, actorID uuid.UUID, isAdmin bool) ([]models.Transaction, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.orders.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !isAdmin && order.BuyerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	txns, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order transactions")
	}
	return txns, nil
}

// loadChargeableMethod verifies the instrument belongs to the buyer and can
// still be charged.
func (s *service) loadChargeableMethod(ctx context.Context, tx *gorm.DB, buyerID, methodID uuid.UUID) (*models.PaymentMethod, error) {
	method, err := s.methods.WithTx(tx).FindByID(ctx, methodID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment method not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment method")
	}
	if method.UserID != buyerID || !method.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment method not found")
	}
	if method.IsExpired(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is expired")
	}
	return method, nil
}

// assignOrderNumber persists the paid transition together with a freshly
// generated order number, retrying on collisions. Each attempt runs under a
// savepoint so a unique violation does not poison the enclosing transaction
// on postgres.
func (s *service) assignOrderNumber(ctx context.Context, tx *gorm.DB, orderRepo orders.Repository, order *models.Order, expectedVersion int, now time.Time) error {
	updates := orders.TransitionUpdates(order)
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		number := s.numberGen(now)
		updates["order_number"] = number

		sp := fmt.Sprintf("order_number_attempt_%d", attempt)
		if err := tx.SavePoint(sp).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist paid order")
		}

		err := orderRepo.UpdateOrder(ctx, order.ID, expectedVersion, updates)
		if err == nil {
			order.OrderNumber = &number
			return nil
		}
		if err == orders.ErrStaleOrder {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order changed concurrently, retry")
		}
		if !db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist paid order")
		}
		if rerr := tx.RollbackTo(sp).Error; rerr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, rerr, "persist paid order")
		}
	}
	return pkgerrors.New(pkgerrors.CodeInternal, "could not allocate an order number")
}

func generateOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%06d", now.Format("20060102"), rand.IntN(1000000))
}
