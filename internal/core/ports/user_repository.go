package ports

import (
	"context"
	"time"

	"github.com/gigboard/marketplace-api/internal/core/domain"
)

// UserRepository persists identities. Implementations must back email
// uniqueness with a store-level constraint and report a violation as
// domain.ErrDuplicateEmail; callers never check-then-insert.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByEmail matches the email exactly (no case folding).
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// UpdateProfile replaces the profile attributes of id and returns the stored user.
	UpdateProfile(ctx context.Context, id string, profile domain.Profile, updatedAt time.Time) (*domain.User, error)
}
