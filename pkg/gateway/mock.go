package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	mockName = "MOCK"

	// DeclineTokenPrefix forces a declined charge, for testing failure paths
	// end to end without a real processor.
	DeclineTokenPrefix = "tok_decline"
)

// Mock simulates a payment processor. Every charge succeeds unless the token
// carries the decline prefix.
type Mock struct{}

// NewMock returns the simulated gateway.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Name() string { return mockName }

func (m *Mock) Charge(_ context.Context, req ChargeRequest) (*ChargeResult, error) {
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("charge amount must not be negative")
	}
	if strings.HasPrefix(req.Token, DeclineTokenPrefix) {
		return nil, ErrDeclined
	}
	return &ChargeResult{
		TransactionID: "TXN-" + uuid.NewString()[:8],
		Response:      "MOCK: Payment successful",
	}, nil
}

func (m *Mock) Refund(_ context.Context, req RefundRequest) (*RefundResult, error) {
	if req.TransactionID == "" {
		return nil, fmt.Errorf("transaction id is required")
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("refund amount must not be negative")
	}
	return &RefundResult{
		RefundID: "RFD-" + uuid.NewString()[:8],
		Response: "MOCK: Refund successful",
	}, nil
}
