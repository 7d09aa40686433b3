package cashier

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() Service {
	return NewService(NewMemoryRepository())
}

func openTestSession(t *testing.T, svc Service, operator uuid.UUID, float float64) *CashSession {
	t.Helper()
	s, err := svc.OpenSession(context.Background(), OpenSessionRequest{
		OperatorID:   operator.String(),
		Till:         "till-1",
		OpeningFloat: float,
	})
	require.NoError(t, err)
	return s
}

func TestOpenSession_RecordsOpeningMovement(t *testing.T) {
	svc := newTestService()
	s := openTestSession(t, svc, uuid.New(), 150.00)

	assert.Equal(t, SessionOpen, s.Status)
	require.Len(t, s.Movements, 1)
	assert.Equal(t, KindOpening, s.Movements[0].Kind)
	assert.Equal(t, 150.00, s.Movements[0].Amount)
	assert.Equal(t, 150.00, s.RunningBalance())
}

func TestOpenSession_OnePerOperator(t *testing.T) {
	svc := newTestService()
	operator := uuid.New()
	openTestSession(t, svc, operator, 100.00)

	_, err := svc.OpenSession(context.Background(), OpenSessionRequest{
		OperatorID:   operator.String(),
		Till:         "till-2",
		OpeningFloat: 50.00,
	})
	assert.ErrorIs(t, err, ErrSessionAlreadyOpen)
}

func TestOpenSession_AllowedAgainAfterClose(t *testing.T) {
	svc := newTestService()
	operator := uuid.New()
	s := openTestSession(t, svc, operator, 100.00)

	_, err := svc.CloseSession(context.Background(), s.ID, CloseSessionRequest{
		CountedByTender: map[string]float64{"cash": 100.00},
	})
	require.NoError(t, err)

	reopened := openTestSession(t, svc, operator, 80.00)
	assert.NotEqual(t, s.ID, reopened.ID)
}

func TestRunningBalance_RecomputedFromMovements(t *testing.T) {
	svc := newTestService()
	s := openTestSession(t, svc, uuid.New(), 150.00)

	s, err := svc.RecordMovement(context.Background(), s.ID, RecordMovementRequest{
		Kind: "SALE", Amount: 200.00, Note: "Order #1 Cash",
	})
	require.NoError(t, err)
	assert.InDelta(t, 350.00, s.RunningBalance(), 0.0001)

	s, err = svc.RecordMovement(context.Background(), s.ID, RecordMovementRequest{
		Kind: "REINFORCEMENT", Amount: 40.00,
	})
	require.NoError(t, err)
	assert.InDelta(t, 390.00, s.RunningBalance(), 0.0001)

	s, err = svc.RecordMovement(context.Background(), s.ID, RecordMovementRequest{
		Kind: "WITHDRAWAL", Amount: 90.00, Note: "supplier cash purchase",
	})
	require.NoError(t, err)
	assert.InDelta(t, 300.00, s.RunningBalance(), 0.0001)
}

func TestRecordMovement_WithdrawalMayExceedBalance(t *testing.T) {
	// Exceeding the drawer is a caller-side confirmation, never a ledger block.
	svc := newTestService()
	s := openTestSession(t, svc, uuid.New(), 50.00)

	s, err := svc.RecordMovement(context.Background(), s.ID, RecordMovementRequest{
		Kind: "WITHDRAWAL", Amount: 80.00,
	})
	require.NoError(t, err)
	assert.InDelta(t, -30.00, s.RunningBalance(), 0.0001)
}

func TestRecordMovement_Validation(t *testing.T) {
	svc := newTestService()
	s := openTestSession(t, svc, uuid.New(), 50.00)

	_, err := svc.RecordMovement(context.Background(), s.ID, RecordMovementRequest{Kind: "SALE", Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.RecordMovement(context.Background(), s.ID, RecordMovementRequest{Kind: "CLOSING", Amount: 10})
	assert.ErrorIs(t, err, ErrInvalidKind)

	_, err = svc.RecordMovement(context.Background(), s.ID, RecordMovementRequest{Kind: "OPENING", Amount: 10})
	assert.ErrorIs(t, err, ErrInvalidKind)

	_, err = svc.RecordMovement(context.Background(), s.ID, RecordMovementRequest{Kind: "LOAN", Amount: 10})
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestCloseSession_Variance(t *testing.T) {
	svc := newTestService()
	s := openTestSession(t, svc, uuid.New(), 150.00)
	_, err := svc.RecordMovement(context.Background(), s.ID, RecordMovementRequest{
		Kind: "SALE", Amount: 200.00,
	})
	require.NoError(t, err)

	result, err := svc.CloseSession(context.Background(), s.ID, CloseSessionRequest{
		CountedByTender: map[string]float64{"cash": 300.00, "card": 40.00},
		Notes:           "ten short",
	})
	require.NoError(t, err)
	assert.InDelta(t, 350.00, result.ExpectedBalance, 0.0001)
	assert.InDelta(t, 340.00, result.CountedTotal, 0.0001)
	assert.InDelta(t, -10.00, result.Variance, 0.0001, "negative variance is cash short")
	assert.Equal(t, SessionClosed, result.Session.Status)

	// The closing count lands in the ledger as the final movement.
	last := result.Session.Movements[len(result.Session.Movements)-1]
	assert.Equal(t, KindClosing, last.Kind)
	assert.InDelta(t, 340.00, last.Amount, 0.0001)
}

func TestCloseSession_RejectsFurtherActivity(t *testing.T) {
	svc := newTestService()
	s := openTestSession(t, svc, uuid.New(), 100.00)
	_, err := svc.CloseSession(context.Background(), s.ID, CloseSessionRequest{
		CountedByTender: map[string]float64{"cash": 100.00},
	})
	require.NoError(t, err)

	_, err = svc.RecordMovement(context.Background(), s.ID, RecordMovementRequest{Kind: "SALE", Amount: 10})
	assert.ErrorIs(t, err, ErrSessionClosed)

	_, err = svc.CloseSession(context.Background(), s.ID, CloseSessionRequest{
		CountedByTender: map[string]float64{"cash": 100.00},
	})
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestCloseSession_BalanceUnaffectedByAuditEntries(t *testing.T) {
	svc := newTestService()
	s := openTestSession(t, svc, uuid.New(), 100.00)
	result, err := svc.CloseSession(context.Background(), s.ID, CloseSessionRequest{
		CountedByTender: map[string]float64{"cash": 500.00},
	})
	require.NoError(t, err)

	// Opening and closing movements are markers; only the float and the
	// operational movements enter the balance.
	assert.InDelta(t, 100.00, result.Session.RunningBalance(), 0.0001)
	assert.InDelta(t, 400.00, result.Variance, 0.0001)
}
