package handler

import (
	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/core/ports"
)

// --- Request → Service input ---

func toRegisterInput(req registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		Profile: domain.Profile{
			Name:        req.Name,
			Title:       req.Title,
			Skills:      req.Skills,
			HourlyRate:  req.HourlyRate,
			Description: req.Description,
		},
	}
}

func toProfileUpdate(req updateProfileRequest) domain.ProfileUpdate {
	return domain.ProfileUpdate{
		Name:        req.Name,
		Title:       req.Title,
		Skills:      req.Skills,
		HourlyRate:  req.HourlyRate,
		Description: req.Description,
	}
}

// --- Domain → HTTP response ---

func toUserView(u *domain.User) userView {
	return userView{
		ID:    u.ID,
		Email: u.Email,
		Role:  string(u.Role),
		Profile: profileView{
			Name:        u.Profile.Name,
			Title:       u.Profile.Title,
			Skills:      nonNil(u.Profile.Skills),
			HourlyRate:  u.Profile.HourlyRate,
			Description: u.Profile.Description,
		},
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}
}

func toAuthResponse(r *ports.AuthResult) authResponse {
	return authResponse{
		User:      toUserView(r.User),
		Token:     r.Token,
		ExpiresAt: r.ExpiresAt.UTC(),
	}
}

func toJobView(j domain.JobWithClient) jobView {
	return jobView{
		ID:          j.ID,
		ClientID:    j.ClientID,
		Title:       j.Title,
		Description: j.Description,
		Budget:      j.Budget,
		Skills:      nonNil(j.Skills),
		Status:      string(j.Status),
		Client:      clientView{Name: j.Client.Name, Email: j.Client.Email},
		CreatedAt:   j.CreatedAt.UTC(),
		UpdatedAt:   j.UpdatedAt.UTC(),
	}
}

func toJobViews(jobs []domain.JobWithClient) []jobView {
	out := make([]jobView, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJobView(j))
	}
	return out
}

func toProposalView(p domain.Proposal) proposalView {
	return proposalView{
		ID:                p.ID,
		JobID:             p.JobID,
		FreelancerID:      p.FreelancerID,
		CoverLetter:       p.CoverLetter,
		Bid:               p.Bid,
		EstimatedDuration: p.EstimatedDuration,
		Status:            string(p.Status),
		CreatedAt:         p.CreatedAt.UTC(),
		UpdatedAt:         p.UpdatedAt.UTC(),
	}
}

func toProposalViews(ps []domain.Proposal) []proposalView {
	out := make([]proposalView, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProposalView(p))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
