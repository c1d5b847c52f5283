package ports

import (
	"context"
	"time"

	"github.com/gigboard/marketplace-api/internal/core/domain"
)

// RegisterInput carries everything needed to create an identity.
type RegisterInput struct {
	Email    string
	Password string
	Role     domain.Role
	Profile  domain.Profile
}

// AuthResult is returned by successful registration and login.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}
