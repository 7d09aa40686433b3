package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL operator repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateOperator(ctx context.Context, op *Operator) error {
	query := `
		INSERT INTO operators (id, email, password_hash, name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query, op.ID, op.Email, op.PasswordHash, op.Name, op.Role).
		Scan(&op.CreatedAt, &op.UpdatedAt)
}

func (r *postgresRepository) GetOperatorByEmail(ctx context.Context, email string) (*Operator, error) {
	op := &Operator{}
	query := `
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM operators
		WHERE email = $1
	`
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&op.ID,
		&op.Email,
		&op.PasswordHash,
		&op.Name,
		&op.Role,
		&op.CreatedAt,
		&op.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOperatorNotFound
	}
	if err != nil {
		return nil, err
	}
	return op, nil
}

func (r *postgresRepository) GetOperatorByID(ctx context.Context, id string) (*Operator, error) {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	op := &Operator{}
	query := `
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM operators
		WHERE id = $1
	`
	err = r.db.QueryRowContext(ctx, query, parsedID).Scan(
		&op.ID,
		&op.Email,
		&op.PasswordHash,
		&op.Name,
		&op.Role,
		&op.CreatedAt,
		&op.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOperatorNotFound
	}
	if err != nil {
		return nil, err
	}
	return op, nil
}
