package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/internal/orders"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/internal/products"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/config"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/db/models"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/enums"
	pkgerrors "github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/errors"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/pricing"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r *gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	stmts := []string{`
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL,
  university_id TEXT NOT NULL DEFAULT '',
  order_number TEXT,
  status TEXT NOT NULL DEFAULT 'cart',
  delivery_method TEXT NOT NULL DEFAULT 'campus_pickup',
  delivery_notes TEXT,
  shipping_address TEXT,
  tracking_number TEXT,
  subtotal NUMERIC NOT NULL DEFAULT 0,
  tax_amount NUMERIC NOT NULL DEFAULT 0,
  platform_fee NUMERIC NOT NULL DEFAULT 0,
  delivery_fee NUMERIC NOT NULL DEFAULT 0,
  total_amount NUMERIC NOT NULL DEFAULT 0,
  version INTEGER NOT NULL DEFAULT 0,
  cancel_reason TEXT,
  submitted_at DATETIME,
  paid_at DATETIME,
  processing_at DATETIME,
  shipped_at DATETIME,
  delivered_at DATETIME,
  completed_at DATETIME,
  cancelled_at DATETIME,
  refunded_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  product_title TEXT NOT NULL,
  product_condition TEXT NOT NULL,
  unit_price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  total_price NUMERIC NOT NULL,
  fulfillment_status TEXT NOT NULL DEFAULT 'pending',
  tracking_number TEXT,
  shipped_at DATETIME,
  delivered_at DATETIME,
  completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL,
  condition TEXT NOT NULL,
  price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  sold_quantity INTEGER NOT NULL DEFAULT 0,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  pickup_location TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := setupCartTestDB(t)
	pricer := pricing.NewCalculator(config.PricingConfig{TaxRateBasisPoints: 900, PlatformFeeBasisPoints: 250})
	svc, err := NewService(orders.NewRepository(db), products.NewRepository(db), pricer, &gormTxRunner{db: db})
	require.NoError(t, err)
	return svc, db
}

func seedProduct(t *testing.T, db *gorm.DB, sellerID uuid.UUID, price float64, qty int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:        uuid.New(),
		SellerID:  sellerID,
		Title:     "TI-84 Calculator",
		Category:  "electronics",
		Condition: enums.ProductConditionGood,
		Price:     decimal.NewFromFloat(price),
		Quantity:  qty,
		IsActive:  true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestGetCart_CreatesWhenMissing(t *testing.T) {
	svc, _ := newTestService(t)
	buyerID := uuid.New()
	campusID := uuid.New()

	view, err := svc.GetCart(context.Background(), buyerID, campusID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCart, view.Order.Status)
	assert.Equal(t, buyerID, view.Order.BuyerID)
	assert.Equal(t, campusID, view.Order.UniversityID)
	assert.Empty(t, view.Items)

	// second call returns the same cart
	again, err := svc.GetCart(context.Background(), buyerID, campusID)
	require.NoError(t, err)
	assert.Equal(t, view.Order.ID, again.Order.ID)
}

func TestAddItem_SnapshotsAndTotals(t *testing.T) {
	svc, db := newTestService(t)
	buyerID := uuid.New()
	product := seedProduct(t, db, uuid.New(), 25.50, 5)

	view, err := svc.AddItem(context.Background(), AddItemInput{
		BuyerID:   buyerID,
		ProductID: product.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)

	line := view.Items[0]
	assert.Equal(t, product.Title, line.ProductTitle)
	assert.Equal(t, product.Condition, line.ProductCondition)
	assert.True(t, line.UnitPrice.Equal(decimal.NewFromFloat(25.50)))
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, line.TotalPrice.Equal(decimal.NewFromFloat(51.00)))
	assert.True(t, view.Order.Subtotal.Equal(decimal.NewFromFloat(51.00)))
	assert.True(t, view.Order.TaxAmount.Equal(decimal.NewFromFloat(4.59)))
	assert.True(t, view.Order.PlatformFee.Equal(decimal.NewFromFloat(1.28)))
	assert.True(t, view.Order.TotalAmount.Equal(decimal.NewFromFloat(56.87)))
}

func TestAddItem_FeesTrackEveryMutation(t *testing.T) {
	svc, db := newTestService(t)
	buyerID := uuid.New()
	textbook := seedProduct(t, db, uuid.New(), 20.00, 5)
	headphones := seedProduct(t, db, uuid.New(), 30.00, 5)

	_, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: buyerID, ProductID: textbook.ID, Quantity: 1})
	require.NoError(t, err)
	view, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: buyerID, ProductID: headphones.ID, Quantity: 2})
	require.NoError(t, err)

	// $80 cart: 9% tax and 2.5% platform fee are carried on the cart itself
	assert.True(t, view.Order.Subtotal.Equal(decimal.NewFromFloat(80.00)))
	assert.True(t, view.Order.TaxAmount.Equal(decimal.NewFromFloat(7.20)))
	assert.True(t, view.Order.PlatformFee.Equal(decimal.NewFromFloat(2.00)))
	assert.True(t, view.Order.TotalAmount.Equal(decimal.NewFromFloat(89.20)))

	// dropping a line reprices the whole quote
	var removeID uuid.UUID
	for _, item := range view.Items {
		if item.ProductID == headphones.ID {
			removeID = item.ID
		}
	}
	view, err = svc.RemoveItem(context.Background(), RemoveItemInput{BuyerID: buyerID, ItemID: removeID})
	require.NoError(t, err)
	assert.True(t, view.Order.Subtotal.Equal(decimal.NewFromFloat(20.00)))
	assert.True(t, view.Order.TaxAmount.Equal(decimal.NewFromFloat(1.80)))
	assert.True(t, view.Order.PlatformFee.Equal(decimal.NewFromFloat(0.50)))
	assert.True(t, view.Order.TotalAmount.Equal(decimal.NewFromFloat(22.30)))
}

func TestAddItem_MergesExistingLine(t *testing.T) {
	svc, db := newTestService(t)
	buyerID := uuid.New()
	product := seedProduct(t, db, uuid.New(), 10.00, 5)

	_, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: buyerID, ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	view, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: buyerID, ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.True(t, view.Order.Subtotal.Equal(decimal.NewFromFloat(30.00)))
}

func TestAddItem_RejectsOwnListing(t *testing.T) {
	svc, db := newTestService(t)
	buyerID := uuid.New()
	product := seedProduct(t, db, buyerID, 10.00, 5)

	_, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: buyerID, ProductID: product.ID, Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestAddItem_RejectsUnavailableProduct(t *testing.T) {
	svc, db := newTestService(t)
	product := seedProduct(t, db, uuid.New(), 10.00, 5)
	require.NoError(t, db.Model(product).Update("is_active", false).Error)

	_, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: uuid.New(), ProductID: product.ID, Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestAddItem_RejectsOverQuantity(t *testing.T) {
	svc, db := newTestService(t)
	buyerID := uuid.New()
	product := seedProduct(t, db, uuid.New(), 10.00, 2)

	_, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: buyerID, ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	// merged quantity would exceed stock
	_, err = svc.AddItem(context.Background(), AddItemInput{BuyerID: buyerID, ProductID: product.ID, Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestAddItem_UnknownProduct(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: uuid.New(), ProductID: uuid.New(), Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUpdateItem_ChangesQuantityAndRecomputes(t *testing.T) {
	svc, db := newTestService(t)
	buyerID := uuid.New()
	product := seedProduct(t, db, uuid.New(), 15.00, 10)

	view, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: buyerID, ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	view, err = svc.UpdateItem(context.Background(), UpdateItemInput{
		BuyerID:  buyerID,
		ItemID:   view.Items[0].ID,
		Quantity: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, view.Items[0].Quantity)
	assert.True(t, view.Order.Subtotal.Equal(decimal.NewFromFloat(60.00)))
}

func TestUpdateItem_ZeroRemovesLine(t *testing.T) {
	svc, db := newTestService(t)
	buyerID := uuid.New()
	product := seedProduct(t, db, uuid.New(), 15.00, 10)

	view, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: buyerID, ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	view, err = svc.UpdateItem(context.Background(), UpdateItemInput{
		BuyerID:  buyerID,
		ItemID:   view.Items[0].ID,
		Quantity: 0,
	})
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.Order.Subtotal.IsZero())
}

func TestUpdateItem_NotInCart(t *testing.T) {
	svc, db := newTestService(t)
	buyerID := uuid.New()
	product := seedProduct(t, db, uuid.New(), 15.00, 10)

	_, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: buyerID, ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = svc.UpdateItem(context.Background(), UpdateItemInput{
		BuyerID:  buyerID,
		ItemID:   uuid.New(),
		Quantity: 2,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestRemoveItem(t *testing.T) {
	svc, db := newTestService(t)
	buyerID := uuid.New()
	first := seedProduct(t, db, uuid.New(), 10.00, 5)
	second := seedProduct(t, db, uuid.New(), 20.00, 5)

	_, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: buyerID, ProductID: first.ID, Quantity: 1})
	require.NoError(t, err)
	view, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: buyerID, ProductID: second.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, view.Items, 2)

	var removeID uuid.UUID
	for _, item := range view.Items {
		if item.ProductID == first.ID {
			removeID = item.ID
		}
	}

	view, err = svc.RemoveItem(context.Background(), RemoveItemInput{BuyerID: buyerID, ItemID: removeID})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, second.ID, view.Items[0].ProductID)
	assert.True(t, view.Order.Subtotal.Equal(decimal.NewFromFloat(20.00)))
}

func TestClear(t *testing.T) {
	svc, db := newTestService(t)
	buyerID := uuid.New()
	product := seedProduct(t, db, uuid.New(), 10.00, 5)

	_, err := svc.AddItem(context.Background(), AddItemInput{BuyerID: buyerID, ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background(), buyerID))

	view, err := svc.GetCart(context.Background(), buyerID, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.Order.Subtotal.IsZero())

	// clearing with no cart is a no-op
	require.NoError(t, svc.Clear(context.Background(), uuid.New()))
}
