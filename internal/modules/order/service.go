package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/montoanel/deliveryweb-backend/internal/modules/addon"
	"github.com/montoanel/deliveryweb-backend/internal/modules/catalog"
)

// ProductCatalog is the catalog lookup surface the order service needs.
// Implemented by catalog.Service.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
	RuleForProduct(ctx context.Context, productID int64) (*catalog.AddonRule, error)
	GetNeighborhood(ctx context.Context, id int64) (*catalog.Neighborhood, error)
}

// MethodRegistry resolves payment methods for the overpayment policy.
// Implemented by catalog.Service.
type MethodRegistry interface {
	GetMethod(ctx context.Context, id int64) (*catalog.PaymentMethod, error)
}

// Service defines the order and payment-ledger business logic.
type Service interface {
	// PlaceOrder validates the items, allocates add-ons, computes the total
	// and persists the order as OPEN with an empty payment list.
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error)

	GetOrder(ctx context.Context, id int64) (*Order, error)
	ListOrders(ctx context.Context, status string) ([]*Order, error)

	// ReplaceItems swaps an OPEN order's items and recomputes its total.
	// Settled and cancelled orders are immutable.
	ReplaceItems(ctx context.Context, id int64, req ReplaceItemsRequest) (*Order, error)

	// CancelOrder cancels an OPEN order that has no payments.
	CancelOrder(ctx context.Context, id int64) (*Order, error)

	// RegisterPayment applies a payment against the order's remaining due.
	// Cash-like overpayment is capped at the remaining due with the excess
	// returned as change; non-cash overpayment is rejected. Status is
	// recomputed after the append.
	RegisterPayment(ctx context.Context, orderID int64, amount float64, methodID int64) (*PaymentResult, error)

	// RevertPayment removes a just-appended payment and recomputes status.
	// It exists solely so the settlement coordinator can compensate when the
	// cash-movement step fails; it is not a refund facility.
	RevertPayment(ctx context.Context, orderID int64, paymentID uuid.UUID) error

	// PreviewAddons runs the same allocation the commit path runs, for UI
	// price previews.
	PreviewAddons(ctx context.Context, productID int64, selections []int64) ([]addon.Allocation, error)
}

type service struct {
	repo    Repository
	catalog ProductCatalog
	methods MethodRegistry
}

// NewService creates a new order service.
func NewService(repo Repository, cat ProductCatalog, methods MethodRegistry) Service {
	return &service{repo: repo, catalog: cat, methods: methods}
}

func (s *service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	serviceType := ServiceType(strings.ToUpper(req.ServiceType))
	switch serviceType {
	case TypeQuickSale, TypeDelivery, TypePickup, TypePreOrder:
	case "":
		serviceType = TypeQuickSale
	default:
		return nil, fmt.Errorf("invalid service_type: %s", req.ServiceType)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}

	items, itemsTotal, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ServiceType:   serviceType,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Items:         items,
		Status:        StatusOpen,
		Notes:         req.Notes,
	}

	if serviceType == TypeDelivery {
		if req.NeighborhoodID == 0 {
			return nil, fmt.Errorf("neighborhood_id is required for delivery orders")
		}
		n, err := s.catalog.GetNeighborhood(ctx, req.NeighborhoodID)
		if err != nil {
			return nil, err
		}
		o.NeighborhoodID = &n.ID
		o.DeliveryFee = n.DeliveryFee
	}

	o.Total = itemsTotal + o.DeliveryFee

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *service) ListOrders(ctx context.Context, status string) ([]*Order, error) {
	return s.repo.ListOrders(ctx, strings.ToUpper(status))
}

func (s *service) ReplaceItems(ctx context.Context, id int64, req ReplaceItemsRequest) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	switch o.Status {
	case StatusSettled:
		return nil, ErrOrderAlreadySettled
	case StatusCancelled:
		return nil, ErrOrderCancelled
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}

	items, itemsTotal, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	o.Items = items
	o.Total = itemsTotal + o.DeliveryFee
	o.Status = deriveStatus(o)

	if err := s.repo.UpdateOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) CancelOrder(ctx context.Context, id int64) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	switch o.Status {
	case StatusSettled:
		return nil, ErrOrderAlreadySettled
	case StatusCancelled:
		return nil, ErrOrderCancelled
	}
	// Payments cannot be reversed, so a part-paid order cannot be cancelled.
	if len(o.Payments) > 0 {
		return nil, ErrHasPayments
	}
	o.Status = StatusCancelled
	if err := s.repo.UpdateOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) RegisterPayment(ctx context.Context, orderID int64, amount float64, methodID int64) (*PaymentResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch o.Status {
	case StatusCancelled:
		return nil, ErrOrderCancelled
	case StatusSettled:
		return nil, ErrOrderAlreadySettled
	}

	method, err := s.methods.GetMethod(ctx, methodID)
	if err != nil {
		return nil, err
	}

	remaining := o.RemainingDue()
	applied := amount
	var change float64
	if amount > remaining {
		if !method.CashLike {
			if amount-remaining > epsilon {
				return nil, ErrOverpaymentNotAllowed
			}
		} else {
			applied = remaining
			change = amount - remaining
		}
	}

	p := &Payment{
		ID:         uuid.New(),
		OrderID:    o.ID,
		MethodID:   method.ID,
		MethodName: method.Name,
		Amount:     applied,
		CreatedAt:  time.Now(),
	}
	o.Payments = append(o.Payments, p)
	o.Status = deriveStatus(o)

	if err := s.repo.AppendPayment(ctx, o, p); err != nil {
		return nil, err
	}
	return &PaymentResult{Order: o, Payment: p, ChangeDue: change}, nil
}

func (s *service) RevertPayment(ctx context.Context, orderID int64, paymentID uuid.UUID) error {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	idx := -1
	for i, p := range o.Payments {
		if p.ID == paymentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrPaymentNotFound
	}
	o.Payments = append(o.Payments[:idx], o.Payments[idx+1:]...)
	o.Status = deriveStatus(o)
	return s.repo.RemovePayment(ctx, o, paymentID)
}

func (s *service) PreviewAddons(ctx context.Context, productID int64, selections []int64) ([]addon.Allocation, error) {
	rule, err := s.catalog.RuleForProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrRuleNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, addon.ErrInvalidAddonSelection)
		}
		return nil, err
	}
	return addon.Allocate(rule, selections, s.priceLookup(ctx))
}

// buildItems resolves products, allocates add-ons and computes line totals.
func (s *service) buildItems(ctx context.Context, reqs []ItemRequest) ([]*LineItem, float64, error) {
	var items []*LineItem
	var total float64

	for _, req := range reqs {
		if req.Quantity <= 0 {
			return nil, 0, fmt.Errorf("quantity must be > 0 for product %d", req.ProductID)
		}
		p, err := s.catalog.GetProduct(ctx, req.ProductID)
		if err != nil {
			return nil, 0, err
		}
		if !p.IsActive {
			return nil, 0, fmt.Errorf("product %d is not available", p.ID)
		}

		item := &LineItem{
			ID:          uuid.New(),
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    req.Quantity,
			UnitPrice:   p.Price,
			LineTotal:   p.Price * float64(req.Quantity),
		}

		if len(req.Addons) > 0 {
			rule, err := s.catalog.RuleForProduct(ctx, p.ID)
			if err != nil {
				if errors.Is(err, catalog.ErrRuleNotFound) {
					return nil, 0, fmt.Errorf("product %d has no addon rule: %w", p.ID, addon.ErrInvalidAddonSelection)
				}
				return nil, 0, err
			}
			allocations, err := addon.Allocate(rule, req.Addons, s.priceLookup(ctx))
			if err != nil {
				return nil, 0, err
			}
			for _, a := range allocations {
				item.Addons = append(item.Addons, &ItemAddon{ProductID: a.ProductID, Price: a.ChargedPrice})
			}
			item.LineTotal += addon.ChargedTotal(allocations)
		}

		total += item.LineTotal
		items = append(items, item)
	}
	return items, total, nil
}

func (s *service) priceLookup(ctx context.Context) addon.PriceLookup {
	return func(productID int64) (float64, error) {
		p, err := s.catalog.GetProduct(ctx, productID)
		if err != nil {
			return 0, err
		}
		return p.Price, nil
	}
}
