package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/db/models"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/enums"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/pagination"
)

// OrderFilters describe the inputs supported by the buyer orders list.
type OrderFilters struct {
	Status   *enums.OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// OrderSummary exposes the aggregated fields returned in the buyer list.
type OrderSummary struct {
	ID             uuid.UUID            `json:"id"`
	OrderNumber    *string              `json:"order_number,omitempty"`
	Status         enums.OrderStatus    `json:"status"`
	DeliveryMethod enums.DeliveryMethod `json:"delivery_method"`
	TotalAmount    decimal.Decimal      `json:"total_amount"`
	TotalItems     int                  `json:"total_items"`
	CreatedAt      time.Time            `json:"created_at"`
}

// OrderList wraps the paginated orders plus page metadata.
type OrderList struct {
	Orders []OrderSummary  `json:"orders"`
	Meta   pagination.Meta `json:"meta"`
}

// SellerItemFilters describe the inputs supported by the seller queue list.
type SellerItemFilters struct {
	FulfillmentStatus *enums.FulfillmentStatus
}

// SellerItemSummary is one line from the seller's fulfillment queue.
type SellerItemSummary struct {
	ItemID            uuid.UUID               `json:"item_id"`
	OrderID           uuid.UUID               `json:"order_id"`
	OrderNumber       *string                 `json:"order_number,omitempty"`
	OrderStatus       enums.OrderStatus       `json:"order_status"`
	ProductTitle      string                  `json:"product_title"`
	Quantity          int                     `json:"quantity"`
	TotalPrice        decimal.Decimal         `json:"total_price"`
	FulfillmentStatus enums.FulfillmentStatus `json:"fulfillment_status"`
	TrackingNumber    *string                 `json:"tracking_number,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
}

// SellerItemList wraps the paginated seller queue plus page metadata.
type SellerItemList struct {
	Items []SellerItemSummary `json:"items"`
	Meta  pagination.Meta     `json:"meta"`
}

// OrderDetail is the full order payload including line items.
type OrderDetail struct {
	Order models.Order       `json:"order"`
	Items []models.OrderItem `json:"items"`
}
