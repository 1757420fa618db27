package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/config"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/enums"
)

// Quote carries the fee breakdown for an order at checkout.
type Quote struct {
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	PlatformFee decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
}

// Calculator prices orders from a subtotal and delivery method. Rates are
// expressed in basis points so config stays integer-only.
type Calculator struct {
	taxRate      decimal.Decimal
	platformRate decimal.Decimal
}

var deliveryFees = map[enums.DeliveryMethod]decimal.Decimal{
	enums.DeliveryMethodCampusPickup: decimal.Zero,
	enums.DeliveryMethodDormDelivery: decimal.NewFromFloat(3.00),
	enums.DeliveryMethodShipping:     decimal.NewFromFloat(8.99),
	enums.DeliveryMethodDigital:      decimal.Zero,
}

// NewCalculator builds a calculator from the configured rates.
func NewCalculator(cfg config.PricingConfig) *Calculator {
	return &Calculator{
		taxRate:      decimal.New(int64(cfg.TaxRateBasisPoints), -4),
		platformRate: decimal.New(int64(cfg.PlatformFeeBasisPoints), -4),
	}
}

// DeliveryFee returns the flat fee for the given delivery method.
func (c *Calculator) DeliveryFee(method enums.DeliveryMethod) decimal.Decimal {
	if fee, ok := deliveryFees[method]; ok {
		return fee
	}
	return decimal.Zero
}

// Price computes the full fee breakdown. Tax and platform fee are both
// percentages of the item subtotal, rounded half-up to cents.
func (c *Calculator) Price(subtotal decimal.Decimal, method enums.DeliveryMethod) Quote {
	tax := subtotal.Mul(c.taxRate).Round(2)
	fee := subtotal.Mul(c.platformRate).Round(2)
	delivery := c.DeliveryFee(method)

	return Quote{
		Subtotal:    subtotal,
		TaxAmount:   tax,
		PlatformFee: fee,
		DeliveryFee: delivery,
		Total:       subtotal.Add(tax).Add(fee).Add(delivery),
	}
}
