package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for the order aggregate.
// AppendPayment and RemovePayment persist the order's derived status in the
// same write as the payment row.
type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id int64) (*Order, error)
	ListOrders(ctx context.Context, status string) ([]*Order, error)
	UpdateOrder(ctx context.Context, o *Order) error
	AppendPayment(ctx context.Context, o *Order, p *Payment) error
	RemovePayment(ctx context.Context, o *Order, paymentID uuid.UUID) error
}
