package cashier

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence contract for the cash session aggregate.
type Repository interface {
	CreateSession(ctx context.Context, s *CashSession) error
	GetSession(ctx context.Context, id int64) (*CashSession, error)
	// GetOpenByOperator returns ErrSessionNotFound when the operator has no
	// open session. The open operation relies on this lookup to enforce the
	// one-open-session-per-operator rule.
	GetOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*CashSession, error)
	ListSessions(ctx context.Context, status string) ([]*CashSession, error)
	AppendMovement(ctx context.Context, s *CashSession, m *CashMovement) error
	CloseSession(ctx context.Context, s *CashSession, closing *CashMovement) error
}
