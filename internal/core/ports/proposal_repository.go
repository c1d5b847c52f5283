package ports

import (
	"context"
	"time"

	"github.com/gigboard/marketplace-api/internal/core/domain"
)

// ProposalFilter narrows a proposal listing. Empty fields do not filter.
type ProposalFilter struct {
	JobID        string
	FreelancerID string
}

// ProposalRepository defines persistence operations for proposals.
type ProposalRepository interface {
	Create(ctx context.Context, p *domain.Proposal) error
	FindByID(ctx context.Context, id string) (*domain.Proposal, error)
	List(ctx context.Context, filter ProposalFilter) ([]domain.Proposal, error)
	// UpdateStatus moves a proposal from status from to status to in a single
	// conditional write. It returns domain.ErrInvalidStatus when the stored
	// status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to domain.ProposalStatus, at time.Time) (*domain.Proposal, error)
}
