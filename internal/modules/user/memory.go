package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is a mutex-guarded in-memory operator store.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*Operator
	byEmail map[string]*Operator
}

// NewMemoryRepository creates an empty in-memory operator repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[uuid.UUID]*Operator),
		byEmail: make(map[string]*Operator),
	}
}

func (r *MemoryRepository) CreateOperator(_ context.Context, op *Operator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	op.CreatedAt = time.Now()
	op.UpdatedAt = op.CreatedAt
	cp := *op
	r.byID[op.ID] = &cp
	r.byEmail[op.Email] = &cp
	return nil
}

func (r *MemoryRepository) GetOperatorByEmail(_ context.Context, email string) (*Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.byEmail[email]
	if !ok {
		return nil, ErrOperatorNotFound
	}
	cp := *op
	return &cp, nil
}

func (r *MemoryRepository) GetOperatorByID(_ context.Context, id string) (*Operator, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.byID[uid]
	if !ok {
		return nil, ErrOperatorNotFound
	}
	cp := *op
	return &cp, nil
}
