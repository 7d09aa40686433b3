package settlement

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/montoanel/deliveryweb-backend/internal/modules/cashier"
	"github.com/montoanel/deliveryweb-backend/internal/modules/catalog"
	"github.com/montoanel/deliveryweb-backend/internal/modules/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	cashMethodID = int64(1)
	cardMethodID = int64(2)
)

type fixture struct {
	settlement Service
	orders     order.Service
	cash       cashier.Service
	operator   uuid.UUID
	productID  int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catRepo := catalog.NewMemoryRepository()
	cat := catalog.NewService(catRepo)

	ctx := context.Background()
	_, err := cat.CreateMethod(ctx, catalog.CreateMethodRequest{Name: "Cash", CashLike: true})
	require.NoError(t, err)
	_, err = cat.CreateMethod(ctx, catalog.CreateMethodRequest{Name: "Card"})
	require.NoError(t, err)
	marmitex, err := cat.CreateProduct(ctx, catalog.CreateProductRequest{Name: "Marmitex", Price: 47.00})
	require.NoError(t, err)

	orders := order.NewService(order.NewMemoryRepository(), cat, cat)
	cash := cashier.NewService(cashier.NewMemoryRepository())

	return &fixture{
		settlement: NewService(orders, cash),
		orders:     orders,
		cash:       cash,
		operator:   uuid.New(),
		productID:  marmitex.ID,
	}
}

func (f *fixture) placeOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := f.orders.PlaceOrder(context.Background(), order.PlaceOrderRequest{
		ServiceType: "QUICK_SALE",
		Items:       []order.ItemRequest{{ProductID: f.productID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.InDelta(t, 47.00, o.Total, 0.0001)
	return o
}

func (f *fixture) openSession(t *testing.T, float float64) *cashier.CashSession {
	t.Helper()
	s, err := f.cash.OpenSession(context.Background(), cashier.OpenSessionRequest{
		OperatorID:   f.operator.String(),
		Till:         "till-1",
		OpeningFloat: float,
	})
	require.NoError(t, err)
	return s
}

func TestSettleSalePayment_CashWithChange(t *testing.T) {
	f := newFixture(t)
	o := f.placeOrder(t)
	f.openSession(t, 150.00)

	result, err := f.settlement.SettleSalePayment(context.Background(), o.ID, f.operator, 50.00, cashMethodID)
	require.NoError(t, err)

	assert.Equal(t, order.StatusSettled, result.Order.Status)
	assert.InDelta(t, 3.00, result.ChangeDue, 0.0001)

	// The drawer receives the capped applied amount, not the tendered 50.
	last := result.Session.Movements[len(result.Session.Movements)-1]
	assert.Equal(t, cashier.KindSale, last.Kind)
	assert.InDelta(t, 47.00, last.Amount, 0.0001)
	assert.Contains(t, last.Note, "Order #")
	assert.InDelta(t, 197.00, result.Session.RunningBalance(), 0.0001)
}

func TestSettleSalePayment_NoActiveSession(t *testing.T) {
	f := newFixture(t)
	o := f.placeOrder(t)

	_, err := f.settlement.SettleSalePayment(context.Background(), o.ID, f.operator, 47.00, cashMethodID)
	assert.ErrorIs(t, err, ErrNoActiveSession)

	// Validated before any order mutation.
	got, err := f.orders.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusOpen, got.Status)
	assert.Empty(t, got.Payments)
}

func TestSettleSalePayment_CardOverpaymentLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	o := f.placeOrder(t)
	s := f.openSession(t, 150.00)

	_, err := f.settlement.SettleSalePayment(context.Background(), o.ID, f.operator, 50.00, cardMethodID)
	assert.ErrorIs(t, err, order.ErrOverpaymentNotAllowed)

	got, err := f.orders.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Payments)

	session, err := f.cash.GetSession(context.Background(), s.ID)
	require.NoError(t, err)
	require.Len(t, session.Movements, 1)
	assert.Equal(t, cashier.KindOpening, session.Movements[0].Kind)
}

// failingCash wraps a real cash ledger but refuses to record movements,
// simulating the session closing between validation and the sale entry.
type failingCash struct {
	CashLedger
}

func (f *failingCash) RecordMovement(context.Context, int64, cashier.RecordMovementRequest) (*cashier.CashSession, error) {
	return nil, cashier.ErrSessionClosed
}

func TestSettleSalePayment_RollsBackPaymentWhenMovementFails(t *testing.T) {
	f := newFixture(t)
	o := f.placeOrder(t)
	f.openSession(t, 150.00)

	broken := NewService(f.orders, &failingCash{CashLedger: f.cash})
	_, err := broken.SettleSalePayment(context.Background(), o.ID, f.operator, 47.00, cashMethodID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cashier.ErrSessionClosed))

	// The compensating revert removed the payment and reopened the order.
	got, err := f.orders.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusOpen, got.Status)
	assert.Empty(t, got.Payments)
}

func TestSettleSalePayment_PartialPaymentsAcrossTenders(t *testing.T) {
	f := newFixture(t)
	o := f.placeOrder(t)
	f.openSession(t, 100.00)

	result, err := f.settlement.SettleSalePayment(context.Background(), o.ID, f.operator, 20.00, cardMethodID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusOpen, result.Order.Status)

	result, err = f.settlement.SettleSalePayment(context.Background(), o.ID, f.operator, 27.00, cashMethodID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusSettled, result.Order.Status)
	assert.Zero(t, result.ChangeDue)

	// Two sale movements, one per payment.
	var sales int
	for _, m := range result.Session.Movements {
		if m.Kind == cashier.KindSale {
			sales++
		}
	}
	assert.Equal(t, 2, sales)
	assert.InDelta(t, 147.00, result.Session.RunningBalance(), 0.0001)
}
