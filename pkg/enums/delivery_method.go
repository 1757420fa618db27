package enums

import (
	"fmt"
	"strings"
)

// DeliveryMethod enumerates how a buyer receives an order.
type DeliveryMethod string

const (
	DeliveryMethodCampusPickup DeliveryMethod = "campus_pickup"
	DeliveryMethodDormDelivery DeliveryMethod = "dorm_delivery"
	DeliveryMethodShipping     DeliveryMethod = "shipping"
	DeliveryMethodDigital      DeliveryMethod = "digital"
)

var validDeliveryMethods = []DeliveryMethod{
	DeliveryMethodCampusPickup,
	DeliveryMethodDormDelivery,
	DeliveryMethodShipping,
	DeliveryMethodDigital,
}

// String implements fmt.Stringer.
func (d DeliveryMethod) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryMethod.
func (d DeliveryMethod) IsValid() bool {
	for _, candidate := range validDeliveryMethods {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryMethod converts raw input into a DeliveryMethod.
func ParseDeliveryMethod(value string) (DeliveryMethod, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validDeliveryMethods {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery method %q", value)
}
