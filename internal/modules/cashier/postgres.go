package cashier

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL session repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) CreateSession(ctx context.Context, s *CashSession) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO cash_sessions (operator_id, till, opening_float, status)
		VALUES ($1,$2,$3,$4)
		RETURNING id, opened_at`,
		s.OperatorID, s.Till, s.OpeningFloat, s.Status,
	).Scan(&s.ID, &s.OpenedAt)
}

func (r *postgresRepo) GetSession(ctx context.Context, id int64) (*CashSession, error) {
	s, err := scanSessionFrom(r.db.QueryRowContext(ctx, `
		SELECT id, operator_id, till, opening_float, status, declaration, opened_at, closed_at
		FROM cash_sessions WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadMovements(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) GetOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*CashSession, error) {
	s, err := scanSessionFrom(r.db.QueryRowContext(ctx, `
		SELECT id, operator_id, till, opening_float, status, declaration, opened_at, closed_at
		FROM cash_sessions WHERE operator_id=$1 AND status=$2`, operatorID, SessionOpen))
	if err != nil {
		return nil, err
	}
	if err := r.loadMovements(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) ListSessions(ctx context.Context, status string) ([]*CashSession, error) {
	query := `SELECT id, operator_id, till, opening_float, status, declaration, opened_at, closed_at
	          FROM cash_sessions`
	var args []interface{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*CashSession
	for rows.Next() {
		s, err := scanSessionFrom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, s := range out {
		if err := r.loadMovements(ctx, s); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *postgresRepo) AppendMovement(ctx context.Context, s *CashSession, m *CashMovement) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO cash_movements (session_id, kind, amount, note, created_at)
		VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		m.SessionID, m.Kind, m.Amount, m.Note, m.CreatedAt,
	).Scan(&m.ID)
}

// CloseSession writes the closing movement, the declaration and the status
// flip in one transaction.
func (r *postgresRepo) CloseSession(ctx context.Context, s *CashSession, closing *CashMovement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO cash_movements (session_id, kind, amount, note, created_at)
		VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		closing.SessionID, closing.Kind, closing.Amount, closing.Note, closing.CreatedAt,
	).Scan(&closing.ID)
	if err != nil {
		return fmt.Errorf("insert closing movement: %w", err)
	}

	declaration, err := json.Marshal(s.Declaration)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE cash_sessions SET status=$1, declaration=$2, closed_at=$3 WHERE id=$4`,
		s.Status, declaration, s.ClosedAt, s.ID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// ── helpers ──────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSessionFrom(row rowScanner) (*CashSession, error) {
	s := &CashSession{}
	var declaration []byte
	var closedAt sql.NullTime
	err := row.Scan(&s.ID, &s.OperatorID, &s.Till, &s.OpeningFloat, &s.Status,
		&declaration, &s.OpenedAt, &closedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(declaration) > 0 {
		if err := json.Unmarshal(declaration, &s.Declaration); err != nil {
			return nil, err
		}
	}
	if closedAt.Valid {
		t := closedAt.Time
		s.ClosedAt = &t
	}
	return s, nil
}

func (r *postgresRepo) loadMovements(ctx context.Context, s *CashSession) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, kind, amount, note, created_at
		FROM cash_movements WHERE session_id=$1 ORDER BY id`, s.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		m := &CashMovement{}
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Kind, &m.Amount, &m.Note, &m.CreatedAt); err != nil {
			return err
		}
		s.Movements = append(s.Movements, m)
	}
	return rows.Err()
}
