package cashier

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is a mutex-guarded in-memory session store, used when the
// server runs without a database and as a test fixture.
type MemoryRepository struct {
	mu         sync.RWMutex
	sessions   map[int64]*CashSession
	nextID     int64
	nextMoveID int64
}

// NewMemoryRepository creates an empty in-memory session repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[int64]*CashSession)}
}

func (r *MemoryRepository) CreateSession(_ context.Context, s *CashSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	s.OpenedAt = time.Now()
	r.sessions[s.ID] = cloneSession(s)
	return nil
}

func (r *MemoryRepository) GetSession(_ context.Context, id int64) (*CashSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return cloneSession(s), nil
}

func (r *MemoryRepository) GetOpenByOperator(_ context.Context, operatorID uuid.UUID) (*CashSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if s.OperatorID == operatorID && s.Status == SessionOpen {
			return cloneSession(s), nil
		}
	}
	return nil, ErrSessionNotFound
}

func (r *MemoryRepository) ListSessions(_ context.Context, status string) ([]*CashSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*CashSession
	for _, s := range r.sessions {
		if status != "" && string(s.Status) != status {
			continue
		}
		out = append(out, cloneSession(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) AppendMovement(_ context.Context, s *CashSession, m *CashMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; !ok {
		return ErrSessionNotFound
	}
	r.nextMoveID++
	m.ID = r.nextMoveID
	r.sessions[s.ID] = cloneSession(s)
	return nil
}

func (r *MemoryRepository) CloseSession(_ context.Context, s *CashSession, closing *CashMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; !ok {
		return ErrSessionNotFound
	}
	r.nextMoveID++
	closing.ID = r.nextMoveID
	r.sessions[s.ID] = cloneSession(s)
	return nil
}

func cloneSession(s *CashSession) *CashSession {
	cp := *s
	cp.Movements = make([]*CashMovement, len(s.Movements))
	for i, m := range s.Movements {
		mc := *m
		cp.Movements[i] = &mc
	}
	if s.ClosedAt != nil {
		t := *s.ClosedAt
		cp.ClosedAt = &t
	}
	if s.Declaration != nil {
		d := *s.Declaration
		d.CountedByTender = make(map[string]float64, len(s.Declaration.CountedByTender))
		for k, v := range s.Declaration.CountedByTender {
			d.CountedByTender[k] = v
		}
		cp.Declaration = &d
	}
	return &cp
}
