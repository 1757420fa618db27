package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/db/models"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/enums"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/pagination"
)

// ErrStaleOrder signals the optimistic version check failed on update.
var ErrStaleOrder = errors.New("order was modified concurrently")

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrderForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	q := r.db.WithContext(ctx)
	// sqlite rejects FOR UPDATE, its writes are serialized anyway
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	if err := q.Where("id = ?", orderID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrderWithItems(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindCartByBuyer(ctx context.Context, buyerID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("buyer_id = ? AND status = ?", buyerID, enums.OrderStatusCart).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindItem(ctx context.Context, itemID uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	err := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	params = params.Normalize()

	base := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("buyer_id = ?", buyerID).
		Where("status <> ?", enums.OrderStatusCart)
	if filters.Status != nil {
		base = base.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		base = base.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		base = base.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.Order
	err := base.Session(&gorm.Session{}).
		Preload("Items").
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]OrderSummary, 0, len(rows))
	for _, row := range rows {
		items := 0
		for _, item := range row.Items {
			items += item.Quantity
		}
		summaries = append(summaries, OrderSummary{
			ID:             row.ID,
			OrderNumber:    row.OrderNumber,
			Status:         row.Status,
			DeliveryMethod: row.DeliveryMethod,
			TotalAmount:    row.TotalAmount,
			TotalItems:     items,
			CreatedAt:      row.CreatedAt,
		})
	}

	return &OrderList{
		Orders: summaries,
		Meta:   pagination.MetaFor(params, total),
	}, nil
}

func (r *repository) ListOrdersByStatus(ctx context.Context, status enums.OrderStatus, params pagination.Params) (*OrderList, error) {
	params = params.Normalize()

	base := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status = ?", status)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.Order
	err := base.Session(&gorm.Session{}).
		Preload("Items").
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]OrderSummary, 0, len(rows))
	for _, row := range rows {
		items := 0
		for _, item := range row.Items {
			items += item.Quantity
		}
		summaries = append(summaries, OrderSummary{
			ID:             row.ID,
			OrderNumber:    row.OrderNumber,
			Status:         row.Status,
			DeliveryMethod: row.DeliveryMethod,
			TotalAmount:    row.TotalAmount,
			TotalItems:     items,
			CreatedAt:      row.CreatedAt,
		})
	}

	return &OrderList{
		Orders: summaries,
		Meta:   pagination.MetaFor(params, total),
	}, nil
}

func (r *repository) ListSellerItems(ctx context.Context, sellerID uuid.UUID, params pagination.Params, filters SellerItemFilters) (*SellerItemList, error) {
	params = params.Normalize()

	base := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.seller_id = ?", sellerID).
		Where("orders.status NOT IN ?", []enums.OrderStatus{
			enums.OrderStatusCart,
			enums.OrderStatusPendingPayment,
			enums.OrderStatusCancelled,
			enums.OrderStatusRefunded,
		})
	if filters.FulfillmentStatus != nil {
		base = base.Where("order_items.fulfillment_status = ?", *filters.FulfillmentStatus)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	type itemRow struct {
		models.OrderItem
		OrderNumber *string           `gorm:"column:order_number"`
		OrderStatus enums.OrderStatus `gorm:"column:order_status"`
	}

	var rows []itemRow
	err := base.Session(&gorm.Session{}).
		Select("order_items.*, orders.order_number AS order_number, orders.status AS order_status").
		Order("order_items.created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]SellerItemSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, SellerItemSummary{
			ItemID:            row.ID,
			OrderID:           row.OrderID,
			OrderNumber:       row.OrderNumber,
			OrderStatus:       row.OrderStatus,
			ProductTitle:      row.ProductTitle,
			Quantity:          row.Quantity,
			TotalPrice:        row.TotalPrice,
			FulfillmentStatus: row.FulfillmentStatus,
			TrackingNumber:    row.TrackingNumber,
			CreatedAt:         row.CreatedAt,
		})
	}

	return &SellerItemList{
		Items: summaries,
		Meta:  pagination.MetaFor(params, total),
	}, nil
}

func (r *repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, expectedVersion int, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND version = ?", orderID, expectedVersion).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleOrder
	}
	return nil
}

func (r *repository) UpdateOrderItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", itemID).
		Updates(updates).Error
}

func (r *repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&models.OrderItem{}).Error
}

func (r *repository) DeleteItemsByOrder(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.OrderItem{}).Error
}
