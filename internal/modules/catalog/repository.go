package catalog

import "context"

// Repository is the persistence contract for the catalog registries.
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context, category string, activeOnly bool) ([]*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error

	SaveRule(ctx context.Context, rule *AddonRule) error
	GetRuleByProduct(ctx context.Context, productID int64) (*AddonRule, error)

	CreateMethod(ctx context.Context, m *PaymentMethod) error
	GetMethod(ctx context.Context, id int64) (*PaymentMethod, error)
	ListMethods(ctx context.Context) ([]*PaymentMethod, error)

	CreateNeighborhood(ctx context.Context, n *Neighborhood) error
	GetNeighborhood(ctx context.Context, id int64) (*Neighborhood, error)
	ListNeighborhoods(ctx context.Context) ([]*Neighborhood, error)
}
