package user

import (
	"context"
	"errors"
)

// ErrOperatorNotFound is returned when no operator matches a lookup.
var ErrOperatorNotFound = errors.New("operator not found")

// Repository is the persistence contract for operators.
type Repository interface {
	CreateOperator(ctx context.Context, op *Operator) error
	GetOperatorByEmail(ctx context.Context, email string) (*Operator, error)
	GetOperatorByID(ctx context.Context, id string) (*Operator, error)
}
