package cart

import (
	"context"
	"fmt"

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

// View is the cart payload returned to the buyer.
type View struct {
	Order models.Order       `json:"order"`
	Items []models.OrderItem `json:"items"`
}

// AddItemInput adds a listing to the buyer's cart.
type AddItemInput struct {
	BuyerID      uuid.UUID
	UniversityID uuid.UUID
	ProductID    uuid.UUID
	Quantity     int
}

// UpdateItemInput changes the quantity of a cart line. Zero removes it.
type UpdateItemInput struct {
	BuyerID  uuid.UUID
	ItemID   uuid.UUID
	Quantity int
}

// RemoveItemInput drops a single cart line.
type RemoveItemInput struct {
	BuyerID uuid.UUID
	ItemID  uuid.UUID
}

// Service manages the buyer's single open cart.
type Service interface {
	GetCart(ctx context.Context, buyerID, universityID uuid.UUID) (*View, error)
	AddItem(ctx context.Context, input AddItemInput) (*View, error)
	UpdateItem(ctx context.Context, input UpdateItemInput) (*View, error)
	RemoveItem(ctx context.Context, input RemoveItemInput) (*View, error)
	Clear(ctx context.Context, buyerID uuid.UUID) error
}

type service struct {
	repo     orders.Repository
	products products.Repository
	pricer   *pricing.Calculator
	tx       txRunner
}

// NewService builds the cart service with the required dependencies.
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
	}, nil
}

func (s *service) GetCart(ctx context.Context, buyerID, universityID uuid.UUID) (*View, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var view *View
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := findOrCreateCart(ctx, repo, buyerID, universityID)
		if err != nil {
			return err
		}
		view = &View{Order: *cart, Items: cart.Items}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) AddItem(ctx context.Context, input AddItemInput) (*View, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var view *View
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loader := s.products.WithTx(tx)

		cart, err := findOrCreateCart(ctx, repo, input.BuyerID, input.UniversityID)
		if err != nil {
			return err
		}

		product, err := loader.FindByID(ctx, input.ProductID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if product.SellerID == input.BuyerID {
			return pkgerrors.New(pkgerrors.CodeValidation, "cannot buy your own listing")
		}
		if !product.IsAvailable() {
			return pkgerrors.New(pkgerrors.CodeConflict, "product is not available")
		}

		// merge with an existing line for the same product
		var existing *models.OrderItem
		for i := range cart.Items {
			if cart.Items[i].ProductID == product.ID {
				existing = &cart.Items[i]
				break
			}
		}

		requested := input.Quantity
		if existing != nil {
			requested += existing.Quantity
		}
		if requested > product.Quantity {
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("only %d available", product.Quantity))
		}

		if existing != nil {
			total := existing.UnitPrice.Mul(decimal.NewFromInt(int64(requested)))
			if err := repo.UpdateOrderItem(ctx, existing.ID, map[string]any{
				"quantity":    requested,
				"total_price": total,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
			}
		} else {
			item := models.OrderItem{
				OrderID:           cart.ID,
				ProductID:         product.ID,
				SellerID:          product.SellerID,
				ProductTitle:      product.Title,
				ProductCondition:  product.Condition,
				UnitPrice:         product.Price,
				Quantity:          input.Quantity,
				TotalPrice:        product.Price.Mul(decimal.NewFromInt(int64(input.Quantity))),
				FulfillmentStatus: enums.FulfillmentStatusPending,
			}
			if err := repo.CreateOrderItems(ctx, []models.OrderItem{item}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart line")
			}
		}

		return s.refreshCart(ctx, repo, cart, &view)
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) UpdateItem(ctx context.Context, input UpdateItemInput) (*View, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}

	var view *View
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, item, err := s.findCartLine(ctx, repo, input.BuyerID, input.ItemID)
		if err != nil {
			return err
		}

		if input.Quantity == 0 {
			if err := repo.DeleteItem(ctx, item.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
			}
		} else {
			product, err := s.products.WithTx(tx).FindByID(ctx, item.ProductID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeConflict, "product no longer exists")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			if input.Quantity > product.Quantity {
				return pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("only %d available", product.Quantity))
			}
			total := item.UnitPrice.Mul(decimal.NewFromInt(int64(input.Quantity)))
			if err := repo.UpdateOrderItem(ctx, item.ID, map[string]any{
				"quantity":    input.Quantity,
				"total_price": total,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
			}
		}

		return s.refreshCart(ctx, repo, cart, &view)
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) RemoveItem(ctx context.Context, input RemoveItemInput) (*View, error) {
	return s.UpdateItem(ctx, UpdateItemInput{
		BuyerID:  input.BuyerID,
		ItemID:   input.ItemID,
		Quantity: 0,
	})
}

func (s *service) Clear(ctx context.Context, buyerID uuid.UUID) error {
	if buyerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := repo.FindCartByBuyer(ctx, buyerID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if err := repo.DeleteItemsByOrder(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart lines")
		}
		return s.persistTotals(ctx, repo, cart, decimal.Zero)
	})
}

// findCartLine loads the buyer's cart and verifies the line belongs to it.
func (s *service) findCartLine(ctx context.Context, repo orders.Repository, buyerID, itemID uuid.UUID) (*models.Order, *models.OrderItem, error) {
	cart, err := repo.FindCartByBuyer(ctx, buyerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart is empty")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			return cart, &cart.Items[i], nil
		}
	}
	return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
}

// refreshCart recomputes the totals from the surviving lines and reloads the view.
func (s *service) refreshCart(ctx context.Context, repo orders.Repository, cart *models.Order, out **View) error {
	items, err := repo.FindItemsByOrder(ctx, cart.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart lines")
	}
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	if err := s.persistTotals(ctx, repo, cart, subtotal); err != nil {
		return err
	}

	reloaded, err := repo.FindOrderWithItems(ctx, cart.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	*out = &View{Order: *reloaded, Items: reloaded.Items}
	return nil
}

// persistTotals reprices the whole quote so every money column stays coherent
// after each mutation, not just at checkout.
func (s *service) persistTotals(ctx context.Context, repo orders.Repository, cart *models.Order, subtotal decimal.Decimal) error {
	quote := s.pricer.Price(subtotal, cart.DeliveryMethod)
	err := repo.UpdateOrder(ctx, cart.ID, cart.Version, map[string]any{
		"subtotal":     quote.Subtotal,
		"tax_amount":   quote.TaxAmount,
		"platform_fee": quote.PlatformFee,
		"delivery_fee": quote.DeliveryFee,
		"total_amount": quote.Total,
		"version":      cart.Version + 1,
	})
	if err != nil {
		if err == orders.ErrStaleOrder {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart changed concurrently, retry")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart totals")
	}
	return nil
}

func findOrCreateCart(ctx context.Context, repo orders.Repository, buyerID, universityID uuid.UUID) (*models.Order, error) {
	cart, err := repo.FindCartByBuyer(ctx, buyerID)
	if err == nil {
		return cart, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	fresh := &models.Order{
		BuyerID:        buyerID,
		UniversityID:   universityID,
		Status:         enums.OrderStatusCart,
		DeliveryMethod: enums.DeliveryMethodCampusPickup,
		Subtotal:       decimal.Zero,
		TotalAmount:    decimal.Zero,
	}
	created, err := repo.CreateOrder(ctx, fresh)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}
