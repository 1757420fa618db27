package gateway

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrDeclined is returned when the gateway refuses a charge.
var ErrDeclined = errors.New("payment declined")

// ChargeRequest describes a payment attempt against a tokenized instrument.
type ChargeRequest struct {
	OrderNumberHint string
	Token           string
	Amount          decimal.Decimal
}

// ChargeResult is the gateway's answer to a successful charge.
type ChargeResult struct {
	TransactionID string
	Response      string
}

// RefundRequest describes a refund against a settled charge.
type RefundRequest struct {
	TransactionID string
	Amount        decimal.Decimal
}

// RefundResult is the gateway's answer to a successful refund.
type RefundResult struct {
	RefundID string
	Response string
}

// Gateway is the payment processor port. The production build would back this
// with a real processor; the mock implementation ships with the platform.
type Gateway interface {
	Name() string
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
}
