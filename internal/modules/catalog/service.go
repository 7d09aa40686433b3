package catalog

import (
	"context"
	"fmt"
)

// Service defines catalog business logic. It also serves as the lookup
// collaborator for the order, addon and settlement modules.
type Service interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context, category string, activeOnly bool) ([]*Product, error)
	UpdateProduct(ctx context.Context, id int64, req CreateProductRequest) (*Product, error)
	DeactivateProduct(ctx context.Context, id int64) (*Product, error)

	SaveRule(ctx context.Context, productID int64, req SaveRuleRequest) (*AddonRule, error)
	RuleForProduct(ctx context.Context, productID int64) (*AddonRule, error)

	CreateMethod(ctx context.Context, req CreateMethodRequest) (*PaymentMethod, error)
	GetMethod(ctx context.Context, id int64) (*PaymentMethod, error)
	ListMethods(ctx context.Context) ([]*PaymentMethod, error)

	CreateNeighborhood(ctx context.Context, req CreateNeighborhoodRequest) (*Neighborhood, error)
	GetNeighborhood(ctx context.Context, id int64) (*Neighborhood, error)
	ListNeighborhoods(ctx context.Context) ([]*Neighborhood, error)
}

type service struct{ repo Repository }

// NewService creates a new catalog service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}
	p := &Product{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		IsActive: true,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *service) ListProducts(ctx context.Context, category string, activeOnly bool) ([]*Product, error) {
	return s.repo.ListProducts(ctx, category, activeOnly)
}

func (s *service) UpdateProduct(ctx context.Context, id int64, req CreateProductRequest) (*Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Category != "" {
		p.Category = req.Category
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}
	p.Price = req.Price
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) DeactivateProduct(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	p.IsActive = false
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SaveRule replaces the product's addon rule wholesale. Every eligible item
// must reference an existing product.
func (s *service) SaveRule(ctx context.Context, productID int64, req SaveRuleRequest) (*AddonRule, error) {
	if req.FreeQuantity < 0 {
		return nil, fmt.Errorf("free_quantity cannot be negative")
	}
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	rule := &AddonRule{
		ProductID:    productID,
		FreeQuantity: req.FreeQuantity,
	}
	for pos, item := range req.Items {
		if _, err := s.repo.GetProduct(ctx, item.AddonProductID); err != nil {
			return nil, fmt.Errorf("addon product %d: %w", item.AddonProductID, err)
		}
		rule.Items = append(rule.Items, &AddonRuleItem{
			AddonProductID: item.AddonProductID,
			AlwaysCharged:  item.AlwaysCharged,
			Position:       pos,
		})
	}
	if err := s.repo.SaveRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *service) RuleForProduct(ctx context.Context, productID int64) (*AddonRule, error) {
	return s.repo.GetRuleByProduct(ctx, productID)
}

func (s *service) CreateMethod(ctx context.Context, req CreateMethodRequest) (*PaymentMethod, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	m := &PaymentMethod{Name: req.Name, CashLike: req.CashLike, IsActive: true}
	if err := s.repo.CreateMethod(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) GetMethod(ctx context.Context, id int64) (*PaymentMethod, error) {
	return s.repo.GetMethod(ctx, id)
}

func (s *service) ListMethods(ctx context.Context) ([]*PaymentMethod, error) {
	return s.repo.ListMethods(ctx)
}

func (s *service) CreateNeighborhood(ctx context.Context, req CreateNeighborhoodRequest) (*Neighborhood, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if req.DeliveryFee < 0 {
		return nil, fmt.Errorf("delivery_fee cannot be negative")
	}
	n := &Neighborhood{Name: req.Name, DeliveryFee: req.DeliveryFee}
	if err := s.repo.CreateNeighborhood(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *service) GetNeighborhood(ctx context.Context, id int64) (*Neighborhood, error) {
	return s.repo.GetNeighborhood(ctx, id)
}

func (s *service) ListNeighborhoods(ctx context.Context) ([]*Neighborhood, error) {
	return s.repo.ListNeighborhoods(ctx)
}
