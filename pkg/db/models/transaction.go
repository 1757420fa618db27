package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/enums"
)

// Transaction records every payment attempt and refund against an order.
// Failed attempts are kept for the audit trail.
type Transaction struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	UserID          uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	PaymentMethodID *uuid.UUID `gorm:"column:payment_method_id;type:uuid"`

	Amount decimal.Decimal         `gorm:"column:amount;type:numeric(10,2);not null"`
	Status enums.TransactionStatus `gorm:"column:status;type:text;not null;default:'pending';index"`

	PaymentGateway       string  `gorm:"column:payment_gateway;not null"`
	GatewayTransactionID *string `gorm:"column:gateway_transaction_id"`
	GatewayResponse      *string `gorm:"column:gateway_response"`
	FailureReason        *string `gorm:"column:failure_reason"`

	RefundAmount *decimal.Decimal `gorm:"column:refund_amount;type:numeric(10,2)"`
	ProcessedAt  *time.Time       `gorm:"column:processed_at"`
	RefundedAt   *time.Time       `gorm:"column:refunded_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Transaction) TableName() string { return "transactions" }

func (t *Transaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
