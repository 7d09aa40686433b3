package user

import (
	"time"

	"github.com/google/uuid"
)

// Role controls what an operator can do at the till.
type Role string

const (
	RoleManager Role = "MANAGER"
	RoleCashier Role = "CASHIER"
)

// Operator is a till user: a cashier or a manager.
type Operator struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
