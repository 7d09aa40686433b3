package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is a mutex-guarded in-memory order store, used when the
// server runs without a database and as a test fixture.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[int64]*Order
	nextID int64
}

// NewMemoryRepository creates an empty in-memory order repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: make(map[int64]*Order)}
}

func (r *MemoryRepository) CreateOrder(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	o.ID = r.nextID
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	for _, item := range o.Items {
		item.ID = uuid.New()
	}
	r.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *MemoryRepository) GetOrder(_ context.Context, id int64) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *MemoryRepository) ListOrders(_ context.Context, status string) ([]*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Order
	for _, o := range r.orders {
		if status != "" && string(o.Status) != status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) UpdateOrder(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; !ok {
		return ErrOrderNotFound
	}
	o.UpdatedAt = time.Now()
	r.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *MemoryRepository) AppendPayment(_ context.Context, o *Order, _ *Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; !ok {
		return ErrOrderNotFound
	}
	o.UpdatedAt = time.Now()
	r.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *MemoryRepository) RemovePayment(_ context.Context, o *Order, _ uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; !ok {
		return ErrOrderNotFound
	}
	o.UpdatedAt = time.Now()
	r.orders[o.ID] = cloneOrder(o)
	return nil
}

func cloneOrder(o *Order) *Order {
	cp := *o
	cp.Items = make([]*LineItem, len(o.Items))
	for i, item := range o.Items {
		ci := *item
		ci.Addons = make([]*ItemAddon, len(item.Addons))
		for j, a := range item.Addons {
			ca := *a
			ci.Addons[j] = &ca
		}
		cp.Items[i] = &ci
	}
	cp.Payments = make([]*Payment, len(o.Payments))
	for i, p := range o.Payments {
		pc := *p
		cp.Payments[i] = &pc
	}
	if o.NeighborhoodID != nil {
		n := *o.NeighborhoodID
		cp.NeighborhoodID = &n
	}
	return &cp
}
