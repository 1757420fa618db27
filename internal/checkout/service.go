package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/internal/orders"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/internal/products"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/db/models"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/enums"
	pkgerrors "github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/errors"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/pricing"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SubmitInput carries the buyer's checkout choices.
type SubmitInput struct {
	BuyerID         uuid.UUID
	DeliveryMethod  enums.DeliveryMethod
	DeliveryNotes   *string
	ShippingAddress *string
}

// Service turns a cart into an order awaiting payment.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.Order, error)
}

type service struct {
	repo     orders.Repository
	products products.Repository
	pricer   *pricing.Calculator
	tx       txRunner
	now      func() time.Time
}

// NewService builds the checkout service with the required dependencies.
func NewService(repo orders.Repository, productRepo products.Repository, pricer *pricing.Calculator, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if pricer == nil {
		return nil, fmt.Errorf("pricing calculator required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		products: productRepo,
		pricer:   pricer,
		tx:       tx,
		now:      time.Now,
	}, nil
}

// Submit locks the buyer's cart, re-checks every line against the live
// listing, prices the final quote, and moves the order to pending_payment.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Order, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.DeliveryMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery method")
	}
	if input.DeliveryMethod == enums.DeliveryMethodShipping &&
		(input.ShippingAddress == nil || *input.ShippingAddress == "") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address required for shipped orders")
	}

	var submitted *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindCartByBuyer(ctx, input.BuyerID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		cart, err = repo.FindOrderForUpdate(ctx, cart.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock cart")
		}
		items, err := repo.FindItemsByOrder(ctx, cart.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart lines")
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		subtotal, err := s.revalidateLines(ctx, tx, items)
		if err != nil {
			return err
		}

		quote := s.pricer.Price(subtotal, input.DeliveryMethod)

		expectedVersion := cart.Version
		if err := orders.ApplyTransition(cart, enums.OrderStatusPendingPayment, s.now().UTC()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "submit cart")
		}

		updates := orders.TransitionUpdates(cart)
		updates["delivery_method"] = input.DeliveryMethod
		updates["delivery_notes"] = input.DeliveryNotes
		updates["shipping_address"] = input.ShippingAddress
		updates["subtotal"] = quote.Subtotal
		updates["tax_amount"] = quote.TaxAmount
		updates["platform_fee"] = quote.PlatformFee
		updates["delivery_fee"] = quote.DeliveryFee
		updates["total_amount"] = quote.Total

		if err := repo.UpdateOrder(ctx, cart.ID, expectedVersion, updates); err != nil {
			if err == orders.ErrStaleOrder {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart changed concurrently, retry")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist checkout")
		}

		submitted, err = repo.FindOrderWithItems(ctx, cart.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return submitted, nil
}

// revalidateLines re-checks availability against the live listings. Prices are
// snapshots taken at add-to-cart time and stay untouched here.
func (s *service) revalidateLines(ctx context.Context, tx *gorm.DB, items []models.OrderItem) (decimal.Decimal, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	listings, err := s.products.WithTx(tx).FindByIDs(ctx, ids)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	byID := make(map[uuid.UUID]*models.Product, len(listings))
	for i := range listings {
		byID[listings[i].ID] = &listings[i]
	}

	subtotal := decimal.Zero
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok || !product.IsAvailable() {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("%q is no longer available", item.ProductTitle))
		}
		if item.Quantity > product.Quantity {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("only %d of %q available", product.Quantity, product.Title))
		}

		subtotal = subtotal.Add(item.TotalPrice)
	}
	return subtotal, nil
}
