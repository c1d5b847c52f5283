package ports

import (
	"context"

	"github.com/gigboard/marketplace-api/internal/core/domain"
)

// SubmitProposalInput carries the freelancer-supplied fields of a proposal.
type SubmitProposalInput struct {
	JobID             string
	CoverLetter       string
	Bid               float64
	EstimatedDuration int
	IdempotencyKey    string
}

// ProposalResult is the outcome of SubmitProposal.
type ProposalResult struct {
	Proposal       domain.Proposal
	AlreadyExisted bool
}

type ProposalService interface {
	SubmitProposal(ctx context.Context, principal domain.Principal, in SubmitProposalInput) (*ProposalResult, error)
	// ListJobProposals accepts a nil principal for anonymous callers.
	ListJobProposals(ctx context.Context, principal *domain.Principal, jobID string) ([]domain.Proposal, error)
	DecideProposal(ctx context.Context, principal domain.Principal, proposalID string, status domain.ProposalStatus) (*domain.Proposal, error)
}
