package order

import (
	"time"

	"github.com/google/uuid"
)

// ServiceType indicates how an order is fulfilled.
type ServiceType string

const (
	TypeQuickSale ServiceType = "QUICK_SALE"
	TypeDelivery  ServiceType = "DELIVERY"
	TypePickup    ServiceType = "PICKUP"
	TypePreOrder  ServiceType = "PRE_ORDER"
)

// Status is the settlement state of an order. It is derived from the
// payment ledger, never set directly by callers.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusSettled   Status = "SETTLED"
	StatusCancelled Status = "CANCELLED"
)

// epsilon absorbs floating rounding when comparing paid total to due total.
const epsilon = 0.01

// Order is a customer's requested items plus its payment ledger.
// Payments are append-only; items and total are mutable only while OPEN.
type Order struct {
	ID             int64       `json:"id"`
	ServiceType    ServiceType `json:"service_type"`
	CustomerName   string      `json:"customer_name,omitempty"`
	CustomerPhone  string      `json:"customer_phone,omitempty"`
	NeighborhoodID *int64      `json:"neighborhood_id,omitempty"`
	Items          []*LineItem `json:"items"`
	DeliveryFee    float64     `json:"delivery_fee"`
	Total          float64     `json:"total"`
	Status         Status      `json:"status"`
	Payments       []*Payment  `json:"payments"`
	Notes          string      `json:"notes,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// LineItem is one ordered product with its allocated add-ons.
type LineItem struct {
	ID          uuid.UUID    `json:"id"`
	ProductID   int64        `json:"product_id"`
	ProductName string       `json:"product_name"`
	Quantity    int          `json:"quantity"`
	UnitPrice   float64      `json:"unit_price"`
	Addons      []*ItemAddon `json:"addons,omitempty"`
	LineTotal   float64      `json:"line_total"`
}

// ItemAddon is one allocated add-on unit. Price is zero for units absorbed
// by the product's free tier.
type ItemAddon struct {
	ProductID int64   `json:"product_id"`
	Price     float64 `json:"price"`
}

// Payment is one amount applied against the order's due balance.
// Immutable once created; appended, never edited.
type Payment struct {
	ID         uuid.UUID `json:"id"`
	OrderID    int64     `json:"order_id"`
	MethodID   int64     `json:"method_id"`
	MethodName string    `json:"method_name"`
	Amount     float64   `json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
}

// PaidTotal sums every payment applied to the order.
func (o *Order) PaidTotal() float64 {
	var paid float64
	for _, p := range o.Payments {
		paid += p.Amount
	}
	return paid
}

// RemainingDue is the outstanding balance, floored at zero.
func (o *Order) RemainingDue() float64 {
	remaining := o.Total - o.PaidTotal()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// deriveStatus is the single place order status is computed: SETTLED iff the
// paid total covers the declared total within epsilon. Cancellation sticks.
func deriveStatus(o *Order) Status {
	if o.Status == StatusCancelled {
		return StatusCancelled
	}
	if o.PaidTotal() >= o.Total-epsilon {
		return StatusSettled
	}
	return StatusOpen
}

// ItemRequest is one requested line item. Addons lists selected add-on
// product ids in selection order, which is the free-tier tie-break order.
type ItemRequest struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Addons    []int64 `json:"addons,omitempty"`
}

// PlaceOrderRequest is the payload for creating an order.
type PlaceOrderRequest struct {
	ServiceType    string        `json:"service_type"`
	CustomerName   string        `json:"customer_name,omitempty"`
	CustomerPhone  string        `json:"customer_phone,omitempty"`
	NeighborhoodID int64         `json:"neighborhood_id,omitempty"`
	Items          []ItemRequest `json:"items"`
	Notes          string        `json:"notes,omitempty"`
}

// ReplaceItemsRequest is the payload for replacing an OPEN order's items.
type ReplaceItemsRequest struct {
	Items []ItemRequest `json:"items"`
}

// RegisterPaymentRequest is the payload for applying a payment.
type RegisterPaymentRequest struct {
	Amount   float64 `json:"amount"`
	MethodID int64   `json:"method_id"`
}

// PaymentResult is what RegisterPayment returns to the caller. ChangeDue is
// display-only; it is never a ledger entry.
type PaymentResult struct {
	Order     *Order   `json:"order"`
	Payment   *Payment `json:"payment"`
	ChangeDue float64  `json:"change_due"`
}
