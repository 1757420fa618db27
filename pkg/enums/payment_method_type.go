package enums

import (
	"fmt"
	"strings"
)

// PaymentMethodType enumerates the supported tokenized payment instruments.
type PaymentMethodType string

const (
	PaymentMethodTypeCreditCard PaymentMethodType = "credit_card"
	PaymentMethodTypeDebitCard  PaymentMethodType = "debit_card"
	PaymentMethodTypePayPal     PaymentMethodType = "paypal"
	PaymentMethodTypeVenmo      PaymentMethodType = "venmo"
	PaymentMethodTypeCampusCard PaymentMethodType = "campus_card"
)

var validPaymentMethodTypes = []PaymentMethodType{
	PaymentMethodTypeCreditCard,
	PaymentMethodTypeDebitCard,
	PaymentMethodTypePayPal,
	PaymentMethodTypeVenmo,
	PaymentMethodTypeCampusCard,
}

// String implements fmt.Stringer.
func (p PaymentMethodType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethodType.
func (p PaymentMethodType) IsValid() bool {
	for _, candidate := range validPaymentMethodTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethodType converts raw input into a PaymentMethodType.
func ParsePaymentMethodType(value string) (PaymentMethodType, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPaymentMethodTypes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method type %q", value)
}
