package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/enums"
)

// PaymentMethod stores a tokenized payment instrument. Only the gateway token
// and display metadata are persisted, never raw card data.
type PaymentMethod struct {
	ID     uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`

	MethodType enums.PaymentMethodType `gorm:"column:method_type;type:text;not null"`
	Token      string                  `gorm:"column:token;not null"`

	LastFour    *string `gorm:"column:last_four"`
	CardBrand   *string `gorm:"column:card_brand"`
	ExpiryMonth *int    `gorm:"column:expiry_month"`
	ExpiryYear  *int    `gorm:"column:expiry_year"`
	BillingName *string `gorm:"column:billing_name"`
	BillingZip  *string `gorm:"column:billing_zip"`

	IsDefault bool `gorm:"column:is_default;not null;default:false"`
	IsActive  bool `gorm:"column:is_active;not null;default:true;index"`

	GatewayCustomerID *string `gorm:"column:gateway_customer_id"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (PaymentMethod) TableName() string { return "payment_methods" }

func (p *PaymentMethod) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsExpired reports whether the card expiry has passed. Methods without
// expiry metadata never expire.
func (p *PaymentMethod) IsExpired(now time.Time) bool {
	if p.ExpiryMonth == nil || p.ExpiryYear == nil {
		return false
	}
	if *p.ExpiryYear < now.Year() {
		return true
	}
	return *p.ExpiryYear == now.Year() && *p.ExpiryMonth < int(now.Month())
}

// MaskedNumber renders the instrument for display.
func (p *PaymentMethod) MaskedNumber() string {
	if p.LastFour == nil || *p.LastFour == "" {
		return "****"
	}
	return "**** **** **** " + *p.LastFour
}
