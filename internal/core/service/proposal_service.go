package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/core/ports"
	"github.com/gigboard/marketplace-api/internal/pkg/metrics"
)

type ProposalService struct {
	jobs      ports.JobRepository
	proposals ports.ProposalRepository
	idem      idempotency
	policy    AccessPolicy
	log       zerolog.Logger
	now       func() time.Time
}

var _ ports.ProposalService = (*ProposalService)(nil)

func NewProposalService(
	jobs ports.JobRepository,
	proposals ports.ProposalRepository,
	idem ports.IdempotencyStore,
	policy AccessPolicy,
	log zerolog.Logger,
) *ProposalService {
	return &ProposalService{
		jobs:      jobs,
		proposals: proposals,
		idem:      newIdempotency(idem, log),
		policy:    policy,
		log:       log,
		now:       time.Now,
	}
}

// SubmitProposal records a bid by principal on an open job. The freelancer
// is always the principal.
func (s *ProposalService) SubmitProposal(ctx context.Context, principal domain.Principal, in ports.SubmitProposalInput) (*ports.ProposalResult, error) {
	if err := s.policy.CanSubmitProposal(principal); err != nil {
		return nil, err
	}
	if err := validateProposal(in); err != nil {
		return nil, err
	}

	job, err := s.jobs.FindByID(ctx, in.JobID)
	if err != nil {
		return nil, fmt.Errorf("submit proposal: %w", err)
	}
	if job.Status != domain.JobOpen {
		return nil, fmt.Errorf("%w: job is not open for proposals", domain.ErrInvalidStatus)
	}

	scope := "proposal:" + principal.UserID + ":" + job.ID
	replayID, claimed, err := s.idem.begin(ctx, scope, in.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if replayID != "" {
		existing, err := s.proposals.FindByID(ctx, replayID)
		if err != nil {
			return nil, fmt.Errorf("submit proposal: replay %s: %w", replayID, err)
		}
		metrics.IdempotentReplaysTotal.WithLabelValues("proposal").Inc()
		return &ports.ProposalResult{Proposal: *existing, AlreadyExisted: true}, nil
	}

	now := s.now().UTC()
	p := &domain.Proposal{
		ID:                uuid.NewString(),
		JobID:             job.ID,
		FreelancerID:      principal.UserID,
		CoverLetter:       in.CoverLetter,
		Bid:               in.Bid,
		EstimatedDuration: in.EstimatedDuration,
		Status:            domain.ProposalPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.proposals.Create(ctx, p)
	if claimed {
		s.idem.finish(ctx, scope, in.IdempotencyKey, p.ID, err)
	}
	if err != nil {
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("failed to create proposal")
		return nil, fmt.Errorf("submit proposal: %w", err)
	}
	metrics.ProposalsSubmittedTotal.Inc()

	s.log.Info().
		Str("proposal_id", p.ID).
		Str("job_id", job.ID).
		Str("freelancer_id", principal.UserID).
		Msg("proposal submitted")

	return &ports.ProposalResult{Proposal: *p}, nil
}

func (s *ProposalService) ListJobProposals(ctx context.Context, principal *domain.Principal, jobID string) ([]domain.Proposal, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	if err := s.policy.CanReadProposals(principal, job.Job); err != nil {
		return nil, err
	}

	proposals, err := s.proposals.List(ctx, ports.ProposalFilter{JobID: job.ID})
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	return proposals, nil
}

// DecideProposal accepts or rejects a pending proposal. Only the client that
// owns the proposal's job may decide.
func (s *ProposalService) DecideProposal(ctx context.Context, principal domain.Principal, proposalID string, status domain.ProposalStatus) (*domain.Proposal, error) {
	if status != domain.ProposalAccepted && status != domain.ProposalRejected {
		return nil, fmt.Errorf("%w: status must be accepted or rejected", domain.ErrInvalidInput)
	}

	p, err := s.proposals.FindByID(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("decide proposal: %w", err)
	}

	job, err := s.jobs.FindByID(ctx, p.JobID)
	if err != nil {
		return nil, fmt.Errorf("decide proposal: %w", err)
	}
	if err := s.policy.CanDecideProposal(principal, job.Job); err != nil {
		return nil, err
	}

	if !p.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: proposal is already %s", domain.ErrInvalidStatus, p.Status)
	}

	updated, err := s.proposals.UpdateStatus(ctx, p.ID, p.Status, status, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("decide proposal: %w", err)
	}
	metrics.ProposalDecisionsTotal.WithLabelValues(string(status)).Inc()

	s.log.Info().
		Str("proposal_id", p.ID).
		Str("job_id", job.ID).
		Str("status", string(status)).
		Msg("proposal decided")

	return updated, nil
}

func validateProposal(in ports.SubmitProposalInput) error {
	switch {
	case strings.TrimSpace(in.CoverLetter) == "":
		return fmt.Errorf("%w: cover_letter is required", domain.ErrInvalidInput)
	case in.Bid <= 0:
		return fmt.Errorf("%w: bid must be greater than 0", domain.ErrInvalidInput)
	case !domain.AmountFits(in.Bid):
		return fmt.Errorf("%w: bid must have at most two decimals and not exceed %.2f", domain.ErrInvalidInput, domain.MaxAmount)
	case in.EstimatedDuration <= 0:
		return fmt.Errorf("%w: estimated_duration must be greater than 0", domain.ErrInvalidInput)
	case in.EstimatedDuration > domain.MaxEstimatedDays:
		return fmt.Errorf("%w: estimated_duration must be at most %d days", domain.ErrInvalidInput, domain.MaxEstimatedDays)
	}
	return nil
}
