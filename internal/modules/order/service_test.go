package order

import (
	"context"
	"testing"

	"github.com/montoanel/deliveryweb-backend/internal/modules/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCatalog implements ProductCatalog and MethodRegistry over fixed maps.
type stubCatalog struct {
	products map[int64]*catalog.Product
	rules    map[int64]*catalog.AddonRule
	hoods    map[int64]*catalog.Neighborhood
	methods  map[int64]*catalog.PaymentMethod
}

func (s *stubCatalog) GetProduct(_ context.Context, id int64) (*catalog.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func (s *stubCatalog) RuleForProduct(_ context.Context, productID int64) (*catalog.AddonRule, error) {
	r, ok := s.rules[productID]
	if !ok {
		return nil, catalog.ErrRuleNotFound
	}
	return r, nil
}

func (s *stubCatalog) GetNeighborhood(_ context.Context, id int64) (*catalog.Neighborhood, error) {
	n, ok := s.hoods[id]
	if !ok {
		return nil, catalog.ErrNeighborhoodNotFound
	}
	return n, nil
}

func (s *stubCatalog) GetMethod(_ context.Context, id int64) (*catalog.PaymentMethod, error) {
	m, ok := s.methods[id]
	if !ok {
		return nil, catalog.ErrMethodNotFound
	}
	return m, nil
}

const (
	pizzaID  = int64(1)
	cheeseID = int64(2)
	olivesID = int64(3)
	cashID   = int64(1)
	cardID   = int64(2)
)

func newTestService() (Service, *stubCatalog) {
	cat := &stubCatalog{
		products: map[int64]*catalog.Product{
			pizzaID:  {ID: pizzaID, Name: "Pizza", Price: 40.00, IsActive: true},
			cheeseID: {ID: cheeseID, Name: "Extra cheese", Price: 3.50, IsActive: true},
			olivesID: {ID: olivesID, Name: "Olives", Price: 2.00, IsActive: true},
		},
		rules: map[int64]*catalog.AddonRule{
			pizzaID: {
				ID:           1,
				ProductID:    pizzaID,
				FreeQuantity: 1,
				Items: []*catalog.AddonRuleItem{
					{AddonProductID: cheeseID},
					{AddonProductID: olivesID},
				},
			},
		},
		hoods: map[int64]*catalog.Neighborhood{
			1: {ID: 1, Name: "Centro", DeliveryFee: 7.00},
		},
		methods: map[int64]*catalog.PaymentMethod{
			cashID: {ID: cashID, Name: "Cash", CashLike: true, IsActive: true},
			cardID: {ID: cardID, Name: "Card", IsActive: true},
		},
	}
	return NewService(NewMemoryRepository(), cat, cat), cat
}

func placeSimpleOrder(t *testing.T, svc Service) *Order {
	t.Helper()
	o, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		ServiceType: "QUICK_SALE",
		Items:       []ItemRequest{{ProductID: pizzaID, Quantity: 1, Addons: []int64{cheeseID, olivesID}}},
	})
	require.NoError(t, err)
	return o
}

func TestPlaceOrder_TotalIncludesChargedAddons(t *testing.T) {
	svc, _ := newTestService()
	o := placeSimpleOrder(t, svc)

	// First addon free (N=1), second charged at list price.
	assert.InDelta(t, 42.00, o.Total, 0.0001)
	assert.Equal(t, StatusOpen, o.Status)
	require.Len(t, o.Items, 1)
	require.Len(t, o.Items[0].Addons, 2)
	assert.Equal(t, 0.0, o.Items[0].Addons[0].Price)
	assert.Equal(t, 2.00, o.Items[0].Addons[1].Price)
}

func TestPlaceOrder_DeliveryFeeFromNeighborhood(t *testing.T) {
	svc, _ := newTestService()
	o, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		ServiceType:    "DELIVERY",
		NeighborhoodID: 1,
		Items:          []ItemRequest{{ProductID: pizzaID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 47.00, o.Total, 0.0001)
	assert.Equal(t, 7.00, o.DeliveryFee)
}

func TestPlaceOrder_DeliveryRequiresNeighborhood(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		ServiceType: "DELIVERY",
		Items:       []ItemRequest{{ProductID: pizzaID, Quantity: 1}},
	})
	assert.Error(t, err)
}

func TestRegisterPayment_CashOverpaymentBecomesChange(t *testing.T) {
	svc, _ := newTestService()
	o, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		ServiceType:    "DELIVERY",
		NeighborhoodID: 1,
		Items:          []ItemRequest{{ProductID: pizzaID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.InDelta(t, 47.00, o.Total, 0.0001)

	res, err := svc.RegisterPayment(context.Background(), o.ID, 50.00, cashID)
	require.NoError(t, err)
	assert.InDelta(t, 47.00, res.Payment.Amount, 0.0001, "payment recorded at the capped amount")
	assert.InDelta(t, 3.00, res.ChangeDue, 0.0001)
	assert.Equal(t, StatusSettled, res.Order.Status)

	// Payment survives a reload with the capped amount.
	got, err := svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, got.Payments, 1)
	assert.InDelta(t, 47.00, got.Payments[0].Amount, 0.0001)
}

func TestRegisterPayment_CardOverpaymentRejected(t *testing.T) {
	svc, _ := newTestService()
	o, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		ServiceType:    "DELIVERY",
		NeighborhoodID: 1,
		Items:          []ItemRequest{{ProductID: pizzaID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.RegisterPayment(context.Background(), o.ID, 50.00, cardID)
	assert.ErrorIs(t, err, ErrOverpaymentNotAllowed)

	got, err := svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, got.Status)
	assert.Empty(t, got.Payments)
}

func TestRegisterPayment_PartialThenSettled(t *testing.T) {
	svc, _ := newTestService()
	o := placeSimpleOrder(t, svc) // total 42.00

	res, err := svc.RegisterPayment(context.Background(), o.ID, 20.00, cardID)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, res.Order.Status)
	assert.InDelta(t, 22.00, res.Order.RemainingDue(), 0.0001)

	res, err = svc.RegisterPayment(context.Background(), res.Order.ID, 22.00, cardID)
	require.NoError(t, err)
	assert.Equal(t, StatusSettled, res.Order.Status)
	assert.Equal(t, 0.0, res.Order.RemainingDue())
}

func TestRegisterPayment_EpsilonAbsorbsRounding(t *testing.T) {
	svc, _ := newTestService()
	o := placeSimpleOrder(t, svc) // total 42.00

	// One cent short still settles per the epsilon rule.
	res, err := svc.RegisterPayment(context.Background(), o.ID, 41.995, cardID)
	require.NoError(t, err)
	assert.Equal(t, StatusSettled, res.Order.Status)
}

func TestRegisterPayment_InvalidAmount(t *testing.T) {
	svc, _ := newTestService()
	o := placeSimpleOrder(t, svc)
	_, err := svc.RegisterPayment(context.Background(), o.ID, 0, cashID)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = svc.RegisterPayment(context.Background(), o.ID, -5, cashID)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRegisterPayment_SettledAndCancelledOrdersRejected(t *testing.T) {
	svc, _ := newTestService()
	o := placeSimpleOrder(t, svc)
	_, err := svc.RegisterPayment(context.Background(), o.ID, 42.00, cashID)
	require.NoError(t, err)
	_, err = svc.RegisterPayment(context.Background(), o.ID, 1.00, cashID)
	assert.ErrorIs(t, err, ErrOrderAlreadySettled)

	cancelled := placeSimpleOrder(t, svc)
	_, err = svc.CancelOrder(context.Background(), cancelled.ID)
	require.NoError(t, err)
	_, err = svc.RegisterPayment(context.Background(), cancelled.ID, 1.00, cashID)
	assert.ErrorIs(t, err, ErrOrderCancelled)
}

func TestStatusIsDerivedNotStored(t *testing.T) {
	svc, _ := newTestService()
	o := placeSimpleOrder(t, svc)

	// The settled-iff-paid invariant holds after every mutation.
	for _, amount := range []float64{10, 10, 10, 12} {
		res, err := svc.RegisterPayment(context.Background(), o.ID, amount, cardID)
		require.NoError(t, err)
		settled := res.Order.PaidTotal() >= res.Order.Total-0.01
		assert.Equal(t, settled, res.Order.Status == StatusSettled)
	}
}

func TestReplaceItems_ForbiddenOnceSettled(t *testing.T) {
	svc, _ := newTestService()
	o := placeSimpleOrder(t, svc)
	_, err := svc.RegisterPayment(context.Background(), o.ID, 42.00, cashID)
	require.NoError(t, err)

	_, err = svc.ReplaceItems(context.Background(), o.ID, ReplaceItemsRequest{
		Items: []ItemRequest{{ProductID: pizzaID, Quantity: 2}},
	})
	assert.ErrorIs(t, err, ErrOrderAlreadySettled)
}

func TestReplaceItems_RecomputesTotalWhileOpen(t *testing.T) {
	svc, _ := newTestService()
	o := placeSimpleOrder(t, svc)

	updated, err := svc.ReplaceItems(context.Background(), o.ID, ReplaceItemsRequest{
		Items: []ItemRequest{{ProductID: pizzaID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 80.00, updated.Total, 0.0001)
	assert.Equal(t, StatusOpen, updated.Status)
}

func TestCancelOrder_RejectedWithPayments(t *testing.T) {
	svc, _ := newTestService()
	o := placeSimpleOrder(t, svc)
	_, err := svc.RegisterPayment(context.Background(), o.ID, 5.00, cardID)
	require.NoError(t, err)

	_, err = svc.CancelOrder(context.Background(), o.ID)
	assert.ErrorIs(t, err, ErrHasPayments)
}

func TestRevertPayment_ReopensOrder(t *testing.T) {
	svc, _ := newTestService()
	o := placeSimpleOrder(t, svc)
	res, err := svc.RegisterPayment(context.Background(), o.ID, 42.00, cashID)
	require.NoError(t, err)
	require.Equal(t, StatusSettled, res.Order.Status)

	err = svc.RevertPayment(context.Background(), o.ID, res.Payment.ID)
	require.NoError(t, err)

	got, err := svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, got.Status)
	assert.Empty(t, got.Payments)
}
