package auth

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/montoanel/deliveryweb-backend/internal/modules/user"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned on any login failure. The cause is never
// disclosed to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

type service struct {
	userRepo user.Repository
	jwtKey   []byte
}

// NewService creates a new auth service. The signing key comes from
// JWT_SECRET; a development default applies when it is unset.
func NewService(userRepo user.Repository) Service {
	key := os.Getenv("JWT_SECRET")
	if key == "" {
		key = "dev-only-secret"
	}
	return &service{userRepo: userRepo, jwtKey: []byte(key)}
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	op, err := s.userRepo.GetOperatorByEmail(ctx, email)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	expirationTime := time.Now().Add(12 * time.Hour)
	claims := jwt.MapClaims{
		"sub":  op.ID.String(),
		"role": string(op.Role),
		"exp":  expirationTime.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
