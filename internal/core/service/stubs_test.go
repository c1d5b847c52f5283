package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories. Each mirrors the constraint the real store
// enforces (unique email, conditional status update) under a mutex.
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	byEmail map[string]string
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Profile.Skills = append([]string(nil), u.Profile.Skills...)
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrDuplicateEmail
	}
	r.byEmail[user.Email] = user.ID
	r.byID[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, profile domain.Profile, updatedAt time.Time) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Profile = profile
	u.UpdatedAt = updatedAt
	return cloneUser(u), nil
}

type stubJobRepo struct {
	mu        sync.Mutex
	jobs      map[string]domain.Job
	clients   map[string]domain.ClientSummary
	createErr error
}

func newStubJobRepo() *stubJobRepo {
	return &stubJobRepo{
		jobs:    make(map[string]domain.Job),
		clients: make(map[string]domain.ClientSummary),
	}
}

func (r *stubJobRepo) Create(_ context.Context, job *domain.Job) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = *job
	return nil
}

func (r *stubJobRepo) FindByID(_ context.Context, id string) (*domain.JobWithClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return &domain.JobWithClient{Job: j, Client: r.clients[j.ClientID]}, nil
}

func (r *stubJobRepo) List(_ context.Context, f ports.JobFilter) ([]domain.JobWithClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.JobWithClient{}
	for _, j := range r.jobs {
		if f.ClientID != "" && j.ClientID != f.ClientID {
			continue
		}
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		out = append(out, domain.JobWithClient{Job: j, Client: r.clients[j.ClientID]})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

type stubProposalRepo struct {
	mu        sync.Mutex
	proposals map[string]domain.Proposal
}

func newStubProposalRepo() *stubProposalRepo {
	return &stubProposalRepo{proposals: make(map[string]domain.Proposal)}
}

func (r *stubProposalRepo) Create(_ context.Context, p *domain.Proposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.proposals[p.ID] = *p
	return nil
}

func (r *stubProposalRepo) FindByID(_ context.Context, id string) (*domain.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.proposals[id]
	if !ok {
		return nil, domain.ErrProposalNotFound
	}
	return &p, nil
}

func (r *stubProposalRepo) List(_ context.Context, f ports.ProposalFilter) ([]domain.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Proposal{}
	for _, p := range r.proposals {
		if f.JobID != "" && p.JobID != f.JobID {
			continue
		}
		if f.FreelancerID != "" && p.FreelancerID != f.FreelancerID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *stubProposalRepo) UpdateStatus(_ context.Context, id string, from, to domain.ProposalStatus, at time.Time) (*domain.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.proposals[id]
	if !ok {
		return nil, domain.ErrProposalNotFound
	}
	if p.Status != from {
		return nil, domain.ErrInvalidStatus
	}
	p.Status = to
	p.UpdatedAt = at
	r.proposals[id] = p
	return &p, nil
}

// stubIdempotency keeps claims in a map; an empty value is a pending claim.
type stubIdempotency struct {
	mu       sync.Mutex
	entries  map[string]string
	released int
	err      error
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{entries: make(map[string]string)}
}

func (s *stubIdempotency) Claim(_ context.Context, scope, key string) (string, bool, error) {
	if s.err != nil {
		return "", false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.entries[scope+"|"+key]; ok {
		return id, false, nil
	}
	s.entries[scope+"|"+key] = ""
	return "", true, nil
}

func (s *stubIdempotency) Complete(_ context.Context, scope, key, id string) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[scope+"|"+key] = id
	return nil
}

func (s *stubIdempotency) Release(_ context.Context, scope, key string) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, scope+"|"+key)
	s.released++
	return nil
}

var (
	_ ports.UserRepository     = (*stubUserRepo)(nil)
	_ ports.JobRepository      = (*stubJobRepo)(nil)
	_ ports.ProposalRepository = (*stubProposalRepo)(nil)
	_ ports.IdempotencyStore   = (*stubIdempotency)(nil)
)

// fixedClock returns a clock pinned to t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
