package ports

import (
	"context"

	"github.com/gigboard/marketplace-api/internal/core/domain"
)

// ProfileDetail is the caller's own identity with the jobs and proposals it owns.
type ProfileDetail struct {
	User      *domain.User
	Jobs      []domain.JobWithClient
	Proposals []domain.Proposal
}

// ProfileService reads and edits the caller's own profile. The target is
// always the principal; there is no way to address another identity.
type ProfileService interface {
	GetProfile(ctx context.Context, principal domain.Principal) (*ProfileDetail, error)
	UpdateProfile(ctx context.Context, principal domain.Principal, update domain.ProfileUpdate) (*domain.User, error)
}
