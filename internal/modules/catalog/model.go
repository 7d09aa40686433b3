package catalog

import "time"

// Product is a sellable item: a dish, a drink, or an add-on such as a topping.
type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Price     float64   `json:"price"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AddonRule grants a principal product a number of complimentary add-on
// units. Items are kept in the order the catalog manager entered them.
type AddonRule struct {
	ID           int64            `json:"id"`
	ProductID    int64            `json:"product_id"`
	FreeQuantity int              `json:"free_quantity"`
	Items        []*AddonRuleItem `json:"items"`
}

// AddonRuleItem is one eligible add-on within a rule. AlwaysCharged items
// are billed at list price regardless of the free tier.
type AddonRuleItem struct {
	ID             int64 `json:"id"`
	RuleID         int64 `json:"rule_id"`
	AddonProductID int64 `json:"addon_product_id"`
	AlwaysCharged  bool  `json:"always_charged"`
	Position       int   `json:"position"`
}

// PaymentMethod is a registered tender type. CashLike methods can produce
// change; card-like methods cannot.
type PaymentMethod struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	CashLike bool   `json:"cash_like"`
	IsActive bool   `json:"is_active"`
}

// Neighborhood is a delivery zone with its flat delivery fee.
type Neighborhood struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	DeliveryFee float64 `json:"delivery_fee"`
}

// CreateProductRequest is the payload for registering a product.
type CreateProductRequest struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// RuleItemRequest is one eligible add-on entry inside SaveRuleRequest.
type RuleItemRequest struct {
	AddonProductID int64 `json:"addon_product_id"`
	AlwaysCharged  bool  `json:"always_charged"`
}

// SaveRuleRequest is the payload for creating or replacing a product's
// addon rule. Item order is the allocator's tie-break order.
type SaveRuleRequest struct {
	FreeQuantity int               `json:"free_quantity"`
	Items        []RuleItemRequest `json:"items"`
}

// CreateMethodRequest is the payload for registering a payment method.
type CreateMethodRequest struct {
	Name     string `json:"name"`
	CashLike bool   `json:"cash_like"`
}

// CreateNeighborhoodRequest is the payload for registering a delivery zone.
type CreateNeighborhoodRequest struct {
	Name        string  `json:"name"`
	DeliveryFee float64 `json:"delivery_fee"`
}
