package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMockCharge_Succeeds(t *testing.T) {
	mock := NewMock()
	result, err := mock.Charge(context.Background(), ChargeRequest{
		Token:  "tok_visa_4242",
		Amount: decimal.NewFromFloat(89.20),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(result.TransactionID, "TXN-") {
		t.Fatalf("unexpected transaction id %q", result.TransactionID)
	}
	if result.Response != "MOCK: Payment successful" {
		t.Fatalf("unexpected response %q", result.Response)
	}
}

func TestMockCharge_DeclineToken(t *testing.T) {
	mock := NewMock()
	_, err := mock.Charge(context.Background(), ChargeRequest{
		Token:  "tok_decline_insufficient_funds",
		Amount: decimal.NewFromFloat(10.00),
	})
	if !errors.Is(err, ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
}

func TestMockRefund(t *testing.T) {
	mock := NewMock()
	result, err := mock.Refund(context.Background(), RefundRequest{
		TransactionID: "TXN-abcd1234",
		Amount:        decimal.NewFromFloat(25.00),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(result.RefundID, "RFD-") {
		t.Fatalf("unexpected refund id %q", result.RefundID)
	}
}

func TestMockRefund_RequiresTransactionID(t *testing.T) {
	mock := NewMock()
	if _, err := mock.Refund(context.Background(), RefundRequest{Amount: decimal.NewFromFloat(5)}); err == nil {
		t.Fatal("expected missing transaction id to error")
	}
}
