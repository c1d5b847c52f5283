package service

import (
	"fmt"

	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/pkg/metrics"
)

// AccessPolicy decides whether a resolved identity may act on a resource.
//
// With enforceRoles off (the default) job creation and proposal submission
// are open to any authenticated identity and proposal listings are public.
// Turning it on requires the client role to post jobs, the freelancer role to
// submit proposals, and job ownership to read a job's proposals.
// Ownership checks on profiles and proposal decisions always apply.
type AccessPolicy struct {
	enforceRoles bool
}

func NewAccessPolicy(enforceRoles bool) AccessPolicy {
	return AccessPolicy{enforceRoles: enforceRoles}
}

// EnforcesRoles reports whether role checks are active.
func (p AccessPolicy) EnforcesRoles() bool { return p.enforceRoles }

func (p AccessPolicy) CanCreateJob(pr domain.Principal) error {
	if p.enforceRoles && pr.Role != domain.RoleClient {
		return deny("create_job", "only clients can post jobs")
	}
	return nil
}

func (p AccessPolicy) CanSubmitProposal(pr domain.Principal) error {
	if p.enforceRoles && pr.Role != domain.RoleFreelancer {
		return deny("submit_proposal", "only freelancers can submit proposals")
	}
	return nil
}

// CanReadProposals accepts a nil principal for anonymous callers.
func (p AccessPolicy) CanReadProposals(pr *domain.Principal, job domain.Job) error {
	if !p.enforceRoles {
		return nil
	}
	if pr == nil {
		return domain.ErrUnauthenticated
	}
	if pr.UserID != job.ClientID {
		return deny("read_proposals", "only the job owner can list its proposals")
	}
	return nil
}

func (p AccessPolicy) CanDecideProposal(pr domain.Principal, job domain.Job) error {
	if pr.UserID != job.ClientID {
		return deny("decide_proposal", "only the job owner can decide on proposals")
	}
	return nil
}

func (p AccessPolicy) CanEditProfile(pr domain.Principal, targetID string) error {
	if pr.UserID == "" || pr.UserID != targetID {
		return deny("edit_profile", "profiles can only be edited by their owner")
	}
	return nil
}

func deny(action, reason string) error {
	metrics.AuthorizationDenialsTotal.WithLabelValues(action).Inc()
	return fmt.Errorf("%w: %s", domain.ErrForbidden, reason)
}
