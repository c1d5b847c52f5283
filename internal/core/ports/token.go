package ports

import (
	"time"

	"github.com/gigboard/marketplace-api/internal/core/domain"
)

// IssuedToken is a signed access token and its validity window.
type IssuedToken struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer mints access tokens for authenticated identities.
type TokenIssuer interface {
	Issue(user *domain.User) (IssuedToken, error)
}

// TokenVerifier resolves a raw bearer token to the caller identity.
// Every failure wraps domain.ErrUnauthenticated.
type TokenVerifier interface {
	Verify(raw string) (*domain.Principal, error)
}
