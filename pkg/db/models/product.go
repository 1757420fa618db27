package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/enums"
)

// Product is a marketplace listing. The order flow reads listings to validate
// availability and snapshot pricing; listing management lives elsewhere.
type Product struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID uuid.UUID `gorm:"column:seller_id;type:uuid;not null;index"`

	Title       string                 `gorm:"column:title;not null"`
	Description string                 `gorm:"column:description;not null"`
	Category    string                 `gorm:"column:category;not null;index"`
	Condition   enums.ProductCondition `gorm:"column:condition;type:text;not null"`

	Price          decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Quantity       int             `gorm:"column:quantity;not null;default:1"`
	SoldQuantity   int             `gorm:"column:sold_quantity;not null;default:0"`
	IsActive       bool            `gorm:"column:is_active;not null;default:true;index"`
	PickupLocation *string         `gorm:"column:pickup_location"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsAvailable reports whether the listing can be added to a cart.
func (p *Product) IsAvailable() bool {
	return p.IsActive && p.Quantity > 0
}
