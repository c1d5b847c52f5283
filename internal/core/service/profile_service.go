package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/core/ports"
)

type ProfileService struct {
	users     ports.UserRepository
	jobs      ports.JobRepository
	proposals ports.ProposalRepository
	policy    AccessPolicy
	log       zerolog.Logger
	now       func() time.Time
}

var _ ports.ProfileService = (*ProfileService)(nil)

func NewProfileService(
	users ports.UserRepository,
	jobs ports.JobRepository,
	proposals ports.ProposalRepository,
	policy AccessPolicy,
	log zerolog.Logger,
) *ProfileService {
	return &ProfileService{
		users:     users,
		jobs:      jobs,
		proposals: proposals,
		policy:    policy,
		log:       log,
		now:       time.Now,
	}
}

// GetProfile returns the principal's own identity with the jobs it posted
// and the proposals it submitted.
func (s *ProfileService) GetProfile(ctx context.Context, principal domain.Principal) (*ports.ProfileDetail, error) {
	if err := s.policy.CanEditProfile(principal, principal.UserID); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	jobs, err := s.jobs.List(ctx, ports.JobFilter{ClientID: user.ID})
	if err != nil {
		return nil, fmt.Errorf("get profile: list jobs: %w", err)
	}

	proposals, err := s.proposals.List(ctx, ports.ProposalFilter{FreelancerID: user.ID})
	if err != nil {
		return nil, fmt.Errorf("get profile: list proposals: %w", err)
	}

	return &ports.ProfileDetail{User: user, Jobs: jobs, Proposals: proposals}, nil
}

// UpdateProfile applies update to the principal's own profile. Email, role
// and credentials are not part of a profile and cannot change here.
func (s *ProfileService) UpdateProfile(ctx context.Context, principal domain.Principal, update domain.ProfileUpdate) (*domain.User, error) {
	if err := s.policy.CanEditProfile(principal, principal.UserID); err != nil {
		return nil, err
	}
	if err := validateProfileUpdate(update); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if update.Empty() {
		return user, nil
	}

	profile := user.Profile
	update.Apply(&profile)

	updated, err := s.users.UpdateProfile(ctx, user.ID, profile, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.log.Info().Str("user_id", updated.ID).Msg("profile updated")
	return updated, nil
}

func validateProfileUpdate(u domain.ProfileUpdate) error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
	}
	if u.HourlyRate != nil && *u.HourlyRate < 0 {
		return fmt.Errorf("%w: hourly_rate cannot be negative", domain.ErrInvalidInput)
	}
	if u.HourlyRate != nil && !domain.AmountFits(*u.HourlyRate) {
		return fmt.Errorf("%w: hourly_rate must have at most two decimals and not exceed %.2f", domain.ErrInvalidInput, domain.MaxAmount)
	}
	return nil
}
