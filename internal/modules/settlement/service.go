// Package settlement ties the order payment ledger to the cash session
// ledger: every sale payment taken at the till must leave a matching cash
// movement, or no trace at all.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/montoanel/deliveryweb-backend/internal/modules/cashier"
	"github.com/montoanel/deliveryweb-backend/internal/modules/order"
)

// ErrNoActiveSession is returned when the operator has no open cash session.
// It is raised before the order is touched.
var ErrNoActiveSession = errors.New("operator has no active cash session")

// PaymentLedger is the slice of order.Service the coordinator needs.
type PaymentLedger interface {
	RegisterPayment(ctx context.Context, orderID int64, amount float64, methodID int64) (*order.PaymentResult, error)
	RevertPayment(ctx context.Context, orderID int64, paymentID uuid.UUID) error
}

// CashLedger is the slice of cashier.Service the coordinator needs.
type CashLedger interface {
	ActiveSession(ctx context.Context, operatorID uuid.UUID) (*cashier.CashSession, error)
	RecordMovement(ctx context.Context, sessionID int64, req cashier.RecordMovementRequest) (*cashier.CashSession, error)
}

// Result is the outcome of a settled sale payment: the updated order, the
// updated session and any change owed to the customer.
type Result struct {
	Order     *order.Order         `json:"order"`
	Session   *cashier.CashSession `json:"session"`
	ChangeDue float64              `json:"change_due"`
}

// Service coordinates a sale payment across both ledgers.
type Service interface {
	// SettleSalePayment registers a payment against the order and records
	// the matching SALE movement in the operator's open session. The
	// movement carries the capped applied amount, never the raw tendered
	// amount. If the movement step fails the payment is reverted, so the
	// order is never left with a payment that has no cash trail.
	SettleSalePayment(ctx context.Context, orderID int64, operatorID uuid.UUID, amount float64, methodID int64) (*Result, error)
}

type service struct {
	payments PaymentLedger
	cash     CashLedger
}

// NewService creates a new settlement coordinator.
func NewService(payments PaymentLedger, cash CashLedger) Service {
	return &service{payments: payments, cash: cash}
}

func (s *service) SettleSalePayment(ctx context.Context, orderID int64, operatorID uuid.UUID, amount float64, methodID int64) (*Result, error) {
	session, err := s.cash.ActiveSession(ctx, operatorID)
	if err != nil {
		if errors.Is(err, cashier.ErrSessionNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, err
	}

	res, err := s.payments.RegisterPayment(ctx, orderID, amount, methodID)
	if err != nil {
		return nil, err
	}

	updated, err := s.cash.RecordMovement(ctx, session.ID, cashier.RecordMovementRequest{
		Kind:   string(cashier.KindSale),
		Amount: res.Payment.Amount,
		Note:   fmt.Sprintf("Order #%d %s", orderID, res.Payment.MethodName),
	})
	if err != nil {
		if revertErr := s.payments.RevertPayment(ctx, orderID, res.Payment.ID); revertErr != nil {
			// Both legs failed; the payment is stranded without a cash trail.
			log.Printf("settlement: revert payment %s on order %d failed: %v", res.Payment.ID, orderID, revertErr)
			return nil, fmt.Errorf("record cash movement: %w (payment revert also failed: %v)", err, revertErr)
		}
		return nil, fmt.Errorf("record cash movement: %w", err)
	}

	return &Result{Order: res.Order, Session: updated, ChangeDue: res.ChangeDue}, nil
}
