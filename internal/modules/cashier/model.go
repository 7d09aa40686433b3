package cashier

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a cash session.
type SessionStatus string

const (
	SessionOpen   SessionStatus = "OPEN"
	SessionClosed SessionStatus = "CLOSED"
)

// MovementKind classifies a cash movement. The sign of a movement's effect
// on the running balance is derived from its kind; amounts are always
// positive magnitudes.
type MovementKind string

const (
	KindOpening       MovementKind = "OPENING"
	KindReinforcement MovementKind = "REINFORCEMENT"
	KindWithdrawal    MovementKind = "WITHDRAWAL"
	KindSale          MovementKind = "SALE"
	KindClosing       MovementKind = "CLOSING"
)

// CashSession is the working period of a single till operator. Movements
// are strictly append-only; a closed session is immutable.
type CashSession struct {
	ID           int64               `json:"id"`
	OperatorID   uuid.UUID           `json:"operator_id"`
	Till         string              `json:"till"`
	OpeningFloat float64             `json:"opening_float"`
	Status       SessionStatus       `json:"status"`
	Movements    []*CashMovement     `json:"movements"`
	Declaration  *ClosingDeclaration `json:"declaration,omitempty"`
	OpenedAt     time.Time           `json:"opened_at"`
	ClosedAt     *time.Time          `json:"closed_at,omitempty"`
}

// CashMovement is one immutable ledger entry within a session.
type CashMovement struct {
	ID        int64        `json:"id"`
	SessionID int64        `json:"session_id"`
	Kind      MovementKind `json:"kind"`
	Amount    float64      `json:"amount"`
	Note      string       `json:"note,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// ClosingDeclaration is the operator's physical count at close, broken down
// by tender type.
type ClosingDeclaration struct {
	CountedByTender map[string]float64 `json:"counted_by_tender"`
	Notes           string             `json:"notes,omitempty"`
}

// RunningBalance recomputes the session's expected cash position from
// scratch: opening float plus reinforcements and sales, minus withdrawals.
// Opening and closing entries are audit markers and do not enter the sum.
func (s *CashSession) RunningBalance() float64 {
	balance := s.OpeningFloat
	for _, m := range s.Movements {
		switch m.Kind {
		case KindReinforcement, KindSale:
			balance += m.Amount
		case KindWithdrawal:
			balance -= m.Amount
		}
	}
	return balance
}

// OpenSessionRequest is the payload for opening a till session.
type OpenSessionRequest struct {
	OperatorID   string  `json:"operator_id"`
	Till         string  `json:"till"`
	OpeningFloat float64 `json:"opening_float"`
}

// RecordMovementRequest is the payload for a reinforcement, withdrawal or
// sale entry.
type RecordMovementRequest struct {
	Kind   string  `json:"kind"`
	Amount float64 `json:"amount"`
	Note   string  `json:"note,omitempty"`
}

// CloseSessionRequest is the payload for closing a session.
type CloseSessionRequest struct {
	CountedByTender map[string]float64 `json:"counted_by_tender"`
	Notes           string             `json:"notes,omitempty"`
}

// CloseResult reports the closing reconciliation. Variance is positive when
// the drawer is over and negative when it is short.
type CloseResult struct {
	Session         *CashSession `json:"session"`
	ExpectedBalance float64      `json:"expected_balance"`
	CountedTotal    float64      `json:"counted_total"`
	Variance        float64      `json:"variance"`
}
