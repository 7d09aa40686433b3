package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service defines the interface for operator management.
type Service interface {
	RegisterOperator(ctx context.Context, email, password, name, role string) (*Operator, error)
	GetOperator(ctx context.Context, id string) (*Operator, error)
}

type service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) RegisterOperator(ctx context.Context, email, password, name, role string) (*Operator, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}
	r := Role(strings.ToUpper(role))
	switch r {
	case RoleManager, RoleCashier:
	case "":
		r = RoleCashier
	default:
		return nil, fmt.Errorf("invalid role: %s (allowed: MANAGER, CASHIER)", role)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	op := &Operator{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
		Role:         r,
	}

	if err := s.repo.CreateOperator(ctx, op); err != nil {
		return nil, err
	}

	return op, nil
}

func (s *service) GetOperator(ctx context.Context, id string) (*Operator, error) {
	return s.repo.GetOperatorByID(ctx, id)
}
