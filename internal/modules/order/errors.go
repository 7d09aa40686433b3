package order

import "errors"

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrInvalidAmount         = errors.New("payment amount must be greater than zero")
	ErrOverpaymentNotAllowed = errors.New("non-cash tenders cannot exceed the remaining due")
	ErrOrderAlreadySettled   = errors.New("order is already settled")
	ErrOrderCancelled        = errors.New("order is cancelled")
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrHasPayments           = errors.New("order with payments cannot be cancelled")
)
