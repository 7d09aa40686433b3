package catalog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is a mutex-guarded in-memory catalog store, used when the
// server runs without a database and as a test fixture.
type MemoryRepository struct {
	mu            sync.RWMutex
	products      map[int64]*Product
	rules         map[int64]*AddonRule // keyed by product id
	methods       map[int64]*PaymentMethod
	neighborhoods map[int64]*Neighborhood
	nextID        int64
}

// NewMemoryRepository creates an empty in-memory catalog repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		products:      make(map[int64]*Product),
		rules:         make(map[int64]*AddonRule),
		methods:       make(map[int64]*PaymentMethod),
		neighborhoods: make(map[int64]*Neighborhood),
	}
}

func (r *MemoryRepository) nextIDLocked() int64 {
	r.nextID++
	return r.nextID
}

func (r *MemoryRepository) CreateProduct(_ context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextIDLocked()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetProduct(_ context.Context, id int64) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryRepository) ListProducts(_ context.Context, category string, activeOnly bool) ([]*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Product
	for _, p := range r.products {
		if category != "" && p.Category != category {
			continue
		}
		if activeOnly && !p.IsActive {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) UpdateProduct(_ context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return ErrProductNotFound
	}
	p.UpdatedAt = time.Now()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *MemoryRepository) SaveRule(_ context.Context, rule *AddonRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rule.ID == 0 {
		rule.ID = r.nextIDLocked()
	}
	for _, item := range rule.Items {
		if item.ID == 0 {
			item.ID = r.nextIDLocked()
		}
		item.RuleID = rule.ID
	}
	r.rules[rule.ProductID] = cloneRule(rule)
	return nil
}

func (r *MemoryRepository) GetRuleByProduct(_ context.Context, productID int64) (*AddonRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[productID]
	if !ok {
		return nil, ErrRuleNotFound
	}
	return cloneRule(rule), nil
}

func (r *MemoryRepository) CreateMethod(_ context.Context, m *PaymentMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = r.nextIDLocked()
	cp := *m
	r.methods[m.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetMethod(_ context.Context, id int64) (*PaymentMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.methods[id]
	if !ok {
		return nil, ErrMethodNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *MemoryRepository) ListMethods(_ context.Context) ([]*PaymentMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*PaymentMethod
	for _, m := range r.methods {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) CreateNeighborhood(_ context.Context, n *Neighborhood) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = r.nextIDLocked()
	cp := *n
	r.neighborhoods[n.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetNeighborhood(_ context.Context, id int64) (*Neighborhood, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.neighborhoods[id]
	if !ok {
		return nil, ErrNeighborhoodNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *MemoryRepository) ListNeighborhoods(_ context.Context) ([]*Neighborhood, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Neighborhood
	for _, n := range r.neighborhoods {
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func cloneRule(rule *AddonRule) *AddonRule {
	cp := *rule
	cp.Items = make([]*AddonRuleItem, len(rule.Items))
	for i, item := range rule.Items {
		ci := *item
		cp.Items[i] = &ci
	}
	return &cp
}
