package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/db/models"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/enums"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
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
);`
	orderItems := `
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
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, buyerID uuid.UUID, status enums.OrderStatus, created time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:          uuid.New(),
		BuyerID:     buyerID,
		Status:      status,
		Subtotal:    decimal.NewFromFloat(40.00),
		TotalAmount: decimal.NewFromFloat(46.60),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func seedItem(t *testing.T, db *gorm.DB, order *models.Order, sellerID uuid.UUID, qty int, status enums.FulfillmentStatus) *models.OrderItem {
	t.Helper()

	item := &models.OrderItem{
		ID:                uuid.New(),
		OrderID:           order.ID,
		ProductID:         uuid.New(),
		SellerID:          sellerID,
		ProductTitle:      "Calculus Textbook",
		ProductCondition:  enums.ProductConditionGood,
		UnitPrice:         decimal.NewFromFloat(20.00),
		Quantity:          qty,
		TotalPrice:        decimal.NewFromFloat(20.00).Mul(decimal.NewFromInt(int64(qty))),
		FulfillmentStatus: status,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.CreatedAt,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestRepositoryFindCartByBuyer(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	buyerID := uuid.New()

	seedOrder(t, db, buyerID, enums.OrderStatusCompleted, time.Now().Add(-time.Hour))
	cart := seedOrder(t, db, buyerID, enums.OrderStatusCart, time.Now())
	seedItem(t, db, cart, uuid.New(), 2, enums.FulfillmentStatusPending)

	found, err := repo.FindCartByBuyer(context.Background(), buyerID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, found.ID)
	require.Len(t, found.Items, 1)

	_, err = repo.FindCartByBuyer(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListBuyerOrders_paginationAndFilters(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	buyerID := uuid.New()

	now := time.Now().UTC()
	older := seedOrder(t, db, buyerID, enums.OrderStatusCompleted, now.Add(-2*time.Hour))
	newer := seedOrder(t, db, buyerID, enums.OrderStatusPaid, now)
	seedOrder(t, db, buyerID, enums.OrderStatusCart, now) // carts excluded
	seedItem(t, db, older, uuid.New(), 1, enums.FulfillmentStatusCompleted)
	seedItem(t, db, newer, uuid.New(), 3, enums.FulfillmentStatusPending)

	list, err := repo.ListBuyerOrders(context.Background(), buyerID, pagination.Params{Page: 1, Limit: 1}, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, newer.ID, list.Orders[0].ID)
	assert.Equal(t, 3, list.Orders[0].TotalItems)
	assert.Equal(t, int64(2), list.Meta.Total)
	assert.Equal(t, 2, list.Meta.TotalPages)

	second, err := repo.ListBuyerOrders(context.Background(), buyerID, pagination.Params{Page: 2, Limit: 1}, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Equal(t, older.ID, second.Orders[0].ID)

	status := enums.OrderStatusPaid
	filtered, err := repo.ListBuyerOrders(context.Background(), buyerID, pagination.Params{}, OrderFilters{Status: &status})
	require.NoError(t, err)
	require.Len(t, filtered.Orders, 1)
	assert.Equal(t, newer.ID, filtered.Orders[0].ID)
}

func TestRepositoryListSellerItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	sellerID := uuid.New()

	now := time.Now().UTC()
	paid := seedOrder(t, db, uuid.New(), enums.OrderStatusPaid, now)
	cart := seedOrder(t, db, uuid.New(), enums.OrderStatusCart, now)
	seedItem(t, db, paid, sellerID, 1, enums.FulfillmentStatusPending)
	seedItem(t, db, paid, uuid.New(), 1, enums.FulfillmentStatusPending) // other seller
	seedItem(t, db, cart, sellerID, 1, enums.FulfillmentStatusPending)  // cart excluded

	list, err := repo.ListSellerItems(context.Background(), sellerID, pagination.Params{}, SellerItemFilters{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, paid.ID, list.Items[0].OrderID)
	assert.Equal(t, enums.OrderStatusPaid, list.Items[0].OrderStatus)

	shipped := enums.FulfillmentStatusShipped
	filtered, err := repo.ListSellerItems(context.Background(), sellerID, pagination.Params{}, SellerItemFilters{FulfillmentStatus: &shipped})
	require.NoError(t, err)
	assert.Empty(t, filtered.Items)
}

func TestRepositoryUpdateOrder_VersionGuard(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := seedOrder(t, db, uuid.New(), enums.OrderStatusPendingPayment, time.Now())

	err := repo.UpdateOrder(context.Background(), order.ID, order.Version, map[string]any{
		"status":  enums.OrderStatusPaid,
		"version": order.Version + 1,
	})
	require.NoError(t, err)

	// stale version rejected
	err = repo.UpdateOrder(context.Background(), order.ID, order.Version, map[string]any{
		"status": enums.OrderStatusCancelled,
	})
	assert.ErrorIs(t, err, ErrStaleOrder)

	reloaded, err := repo.FindOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, reloaded.Status)
}

func TestRepositoryDeleteItemsByOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := seedOrder(t, db, uuid.New(), enums.OrderStatusCart, time.Now())
	seedItem(t, db, order, uuid.New(), 1, enums.FulfillmentStatusPending)
	seedItem(t, db, order, uuid.New(), 2, enums.FulfillmentStatusPending)

	require.NoError(t, repo.DeleteItemsByOrder(context.Background(), order.ID))

	items, err := repo.FindItemsByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
