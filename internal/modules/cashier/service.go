package cashier

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service defines the cash ledger business logic.
type Service interface {
	// OpenSession opens a till session for an operator who has none open.
	// The opening float is recorded as an OPENING movement for audit.
	OpenSession(ctx context.Context, req OpenSessionRequest) (*CashSession, error)

	GetSession(ctx context.Context, id int64) (*CashSession, error)
	ListSessions(ctx context.Context, status string) ([]*CashSession, error)

	// ActiveSession returns the operator's open session, or
	// ErrSessionNotFound when there is none.
	ActiveSession(ctx context.Context, operatorID uuid.UUID) (*CashSession, error)

	// RecordMovement appends a reinforcement, withdrawal or sale entry.
	// A withdrawal may exceed the running balance; confirming that is the
	// caller's concern, the ledger records it as-is.
	RecordMovement(ctx context.Context, sessionID int64, req RecordMovementRequest) (*CashSession, error)

	// CloseSession reconciles the physical count against the expected
	// balance, appends the CLOSING movement and flips the session to CLOSED.
	CloseSession(ctx context.Context, sessionID int64, req CloseSessionRequest) (*CloseResult, error)
}

type service struct{ repo Repository }

// NewService creates a new cashier service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) OpenSession(ctx context.Context, req OpenSessionRequest) (*CashSession, error) {
	operatorID, err := uuid.Parse(req.OperatorID)
	if err != nil {
		return nil, err
	}
	if req.OpeningFloat < 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := s.repo.GetOpenByOperator(ctx, operatorID); err == nil {
		return nil, ErrSessionAlreadyOpen
	} else if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}

	session := &CashSession{
		OperatorID:   operatorID,
		Till:         req.Till,
		OpeningFloat: req.OpeningFloat,
		Status:       SessionOpen,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	if req.OpeningFloat > 0 {
		opening := &CashMovement{
			SessionID: session.ID,
			Kind:      KindOpening,
			Amount:    req.OpeningFloat,
			Note:      "opening float",
			CreatedAt: time.Now(),
		}
		session.Movements = append(session.Movements, opening)
		if err := s.repo.AppendMovement(ctx, session, opening); err != nil {
			return nil, err
		}
	}
	return session, nil
}

func (s *service) GetSession(ctx context.Context, id int64) (*CashSession, error) {
	return s.repo.GetSession(ctx, id)
}

func (s *service) ListSessions(ctx context.Context, status string) ([]*CashSession, error) {
	return s.repo.ListSessions(ctx, strings.ToUpper(status))
}

func (s *service) ActiveSession(ctx context.Context, operatorID uuid.UUID) (*CashSession, error) {
	return s.repo.GetOpenByOperator(ctx, operatorID)
}

func (s *service) RecordMovement(ctx context.Context, sessionID int64, req RecordMovementRequest) (*CashSession, error) {
	kind := MovementKind(strings.ToUpper(req.Kind))
	switch kind {
	case KindReinforcement, KindWithdrawal, KindSale:
	case KindOpening, KindClosing:
		// Opening and closing entries belong to OpenSession and CloseSession.
		return nil, ErrInvalidKind
	default:
		return nil, ErrInvalidKind
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != SessionOpen {
		return nil, ErrSessionClosed
	}

	m := &CashMovement{
		SessionID: session.ID,
		Kind:      kind,
		Amount:    req.Amount,
		Note:      req.Note,
		CreatedAt: time.Now(),
	}
	session.Movements = append(session.Movements, m)
	if err := s.repo.AppendMovement(ctx, session, m); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *service) CloseSession(ctx context.Context, sessionID int64, req CloseSessionRequest) (*CloseResult, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != SessionOpen {
		return nil, ErrSessionClosed
	}

	expected := session.RunningBalance()
	var counted float64
	for _, amount := range req.CountedByTender {
		counted += amount
	}

	closing := &CashMovement{
		SessionID: session.ID,
		Kind:      KindClosing,
		Amount:    counted,
		Note:      "closing count",
		CreatedAt: time.Now(),
	}
	now := closing.CreatedAt
	session.Movements = append(session.Movements, closing)
	session.Status = SessionClosed
	session.ClosedAt = &now
	session.Declaration = &ClosingDeclaration{
		CountedByTender: req.CountedByTender,
		Notes:           req.Notes,
	}

	if err := s.repo.CloseSession(ctx, session, closing); err != nil {
		return nil, err
	}

	return &CloseResult{
		Session:         session,
		ExpectedBalance: expected,
		CountedTotal:    counted,
		Variance:        counted - expected,
	}, nil
}
