package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/enums"
)

// Order is the cart-through-completion aggregate for a single buyer.
// A buyer has at most one order in cart status at a time.
type Order struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID        uuid.UUID            `gorm:"column:buyer_id;type:uuid;not null;index"`
	UniversityID   uuid.UUID            `gorm:"column:university_id;type:uuid;not null;index"`
	OrderNumber    *string              `gorm:"column:order_number;uniqueIndex"`
	Status         enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'cart';index"`
	DeliveryMethod enums.DeliveryMethod `gorm:"column:delivery_method;type:text;not null;default:'campus_pickup'"`
	DeliveryNotes  *string              `gorm:"column:delivery_notes"`
	ShippingAddr   *string              `gorm:"column:shipping_address"`
	TrackingNumber *string              `gorm:"column:tracking_number"`

	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2);not null;default:0"`
	TaxAmount   decimal.Decimal `gorm:"column:tax_amount;type:numeric(10,2);not null;default:0"`
	PlatformFee decimal.Decimal `gorm:"column:platform_fee;type:numeric(10,2);not null;default:0"`
	DeliveryFee decimal.Decimal `gorm:"column:delivery_fee;type:numeric(10,2);not null;default:0"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(10,2);not null;default:0"`

	// Version is bumped on every status transition for optimistic concurrency.
	Version int `gorm:"column:version;not null;default:0"`

	CancelReason *string `gorm:"column:cancel_reason"`

	SubmittedAt  *time.Time `gorm:"column:submitted_at"`
	PaidAt       *time.Time `gorm:"column:paid_at"`
	ProcessingAt *time.Time `gorm:"column:processing_at"`
	ShippedAt    *time.Time `gorm:"column:shipped_at"`
	DeliveredAt  *time.Time `gorm:"column:delivered_at"`
	CompletedAt  *time.Time `gorm:"column:completed_at"`
	CancelledAt  *time.Time `gorm:"column:cancelled_at"`
	RefundedAt   *time.Time `gorm:"column:refunded_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }

// BeforeCreate assigns the primary key so sqlite-backed tests do not rely on
// the Postgres gen_random_uuid() default.
func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
