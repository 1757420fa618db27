package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/enums"
)

// OrderItem is a line in an order. Product title, condition, and unit price are
// snapshotted at submission so later listing edits never rewrite history.
type OrderItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	SellerID  uuid.UUID `gorm:"column:seller_id;type:uuid;not null;index:idx_order_items_seller_status"`

	ProductTitle     string                 `gorm:"column:product_title;not null"`
	ProductCondition enums.ProductCondition `gorm:"column:product_condition;type:text;not null"`
	UnitPrice        decimal.Decimal        `gorm:"column:unit_price;type:numeric(10,2);not null"`
	Quantity         int                    `gorm:"column:quantity;not null;default:1"`
	TotalPrice       decimal.Decimal        `gorm:"column:total_price;type:numeric(10,2);not null"`

	FulfillmentStatus enums.FulfillmentStatus `gorm:"column:fulfillment_status;type:text;not null;default:'pending';index:idx_order_items_seller_status"`
	TrackingNumber    *string                 `gorm:"column:tracking_number"`
	ShippedAt         *time.Time              `gorm:"column:shipped_at"`
	DeliveredAt       *time.Time              `gorm:"column:delivered_at"`
	CompletedAt       *time.Time              `gorm:"column:completed_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (OrderItem) TableName() string { return "order_items" }

func (i *OrderItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
