package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/core/ports"
)

type proposalFixture struct {
	svc       *ProposalService
	jobs      *stubJobRepo
	proposals *stubProposalRepo
}

func newProposalFixture(enforce bool) proposalFixture {
	f := proposalFixture{jobs: newStubJobRepo(), proposals: newStubProposalRepo()}
	f.svc = NewProposalService(f.jobs, f.proposals, newStubIdempotency(), NewAccessPolicy(enforce), zerolog.Nop())
	f.svc.now = fixedClock(issuedAt)
	_ = f.jobs.Create(context.Background(), &ownedJob)
	_ = f.jobs.Create(context.Background(), &domain.Job{ID: "job-closed", ClientID: "client-1", Status: domain.JobCompleted})
	return f
}

func validProposalInput() ports.SubmitProposalInput {
	return ports.SubmitProposalInput{
		JobID:             "job-1",
		CoverLetter:       "I have built many of these",
		Bid:               450,
		EstimatedDuration: 7,
	}
}

func TestSubmitProposal_Success(t *testing.T) {
	f := newProposalFixture(false)

	res, err := f.svc.SubmitProposal(context.Background(), freelancerPrincipal, validProposalInput())
	if err != nil {
		t.Fatalf("SubmitProposal: %v", err)
	}
	p := res.Proposal
	if p.FreelancerID != "free-1" || p.JobID != "job-1" {
		t.Fatalf("unexpected proposal: %+v", p)
	}
	if p.Status != domain.ProposalPending {
		t.Fatalf("expected pending, got %s", p.Status)
	}
}

func TestSubmitProposal_Errors(t *testing.T) {
	f := newProposalFixture(false)
	ctx := context.Background()

	missing := validProposalInput()
	missing.JobID = "nope"
	if _, err := f.svc.SubmitProposal(ctx, freelancerPrincipal, missing); !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}

	closed := validProposalInput()
	closed.JobID = "job-closed"
	if _, err := f.svc.SubmitProposal(ctx, freelancerPrincipal, closed); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	bad := validProposalInput()
	bad.Bid = 0
	if _, err := f.svc.SubmitProposal(ctx, freelancerPrincipal, bad); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	for _, mutate := range []func(*ports.SubmitProposalInput){
		func(in *ports.SubmitProposalInput) { in.Bid = 0.001 },
		func(in *ports.SubmitProposalInput) { in.Bid = 1e10 },
		func(in *ports.SubmitProposalInput) { in.EstimatedDuration = domain.MaxEstimatedDays + 1 },
	} {
		in := validProposalInput()
		mutate(&in)
		if _, err := f.svc.SubmitProposal(ctx, freelancerPrincipal, in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", in, err)
		}
	}

	enforced := newProposalFixture(true)
	if _, err := enforced.svc.SubmitProposal(ctx, clientPrincipal, validProposalInput()); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestSubmitProposal_IdempotentReplay(t *testing.T) {
	f := newProposalFixture(false)
	in := validProposalInput()
	in.IdempotencyKey = "retry-1"

	first, err := f.svc.SubmitProposal(context.Background(), freelancerPrincipal, in)
	if err != nil {
		t.Fatalf("first SubmitProposal: %v", err)
	}
	second, err := f.svc.SubmitProposal(context.Background(), freelancerPrincipal, in)
	if err != nil {
		t.Fatalf("second SubmitProposal: %v", err)
	}
	if !second.AlreadyExisted || second.Proposal.ID != first.Proposal.ID {
		t.Fatalf("expected replay of %q, got %+v", first.Proposal.ID, second)
	}
	if len(f.proposals.proposals) != 1 {
		t.Fatalf("expected 1 stored proposal, got %d", len(f.proposals.proposals))
	}
}

func TestSubmitProposal_ConcurrentRetriesCreateOnce(t *testing.T) {
	f := newProposalFixture(false)
	in := validProposalInput()
	in.IdempotencyKey = "retry-1"

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SubmitProposal(context.Background(), freelancerPrincipal, in)
			if err != nil && !errors.Is(err, domain.ErrIdempotencyConflict) {
				t.Errorf("SubmitProposal: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(f.proposals.proposals) != 1 {
		t.Fatalf("expected 1 stored proposal for one key, got %d", len(f.proposals.proposals))
	}
}

func TestListJobProposals_Policy(t *testing.T) {
	open := newProposalFixture(false)
	if _, err := open.svc.SubmitProposal(context.Background(), freelancerPrincipal, validProposalInput()); err != nil {
		t.Fatalf("SubmitProposal: %v", err)
	}

	list, err := open.svc.ListJobProposals(context.Background(), nil, "job-1")
	if err != nil {
		t.Fatalf("anonymous list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 proposal, got %d", len(list))
	}

	enforced := newProposalFixture(true)
	if _, err := enforced.svc.ListJobProposals(context.Background(), nil, "job-1"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := enforced.svc.ListJobProposals(context.Background(), &otherClient, "job-1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := enforced.svc.ListJobProposals(context.Background(), &clientPrincipal, "job-1"); err != nil {
		t.Fatalf("owner list: %v", err)
	}
}

func TestDecideProposal(t *testing.T) {
	f := newProposalFixture(false)
	ctx := context.Background()

	res, err := f.svc.SubmitProposal(ctx, freelancerPrincipal, validProposalInput())
	if err != nil {
		t.Fatalf("SubmitProposal: %v", err)
	}
	id := res.Proposal.ID

	if _, err := f.svc.DecideProposal(ctx, otherClient, id, domain.ProposalAccepted); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-owner: expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.DecideProposal(ctx, freelancerPrincipal, id, domain.ProposalAccepted); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("freelancer: expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.DecideProposal(ctx, clientPrincipal, id, domain.ProposalPending); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("pending target: expected ErrInvalidInput, got %v", err)
	}

	decided, err := f.svc.DecideProposal(ctx, clientPrincipal, id, domain.ProposalAccepted)
	if err != nil {
		t.Fatalf("DecideProposal: %v", err)
	}
	if decided.Status != domain.ProposalAccepted {
		t.Fatalf("expected accepted, got %s", decided.Status)
	}
	if !decided.UpdatedAt.Equal(issuedAt) {
		t.Fatalf("expected updated_at %v, got %v", issuedAt, decided.UpdatedAt)
	}

	if _, err := f.svc.DecideProposal(ctx, clientPrincipal, id, domain.ProposalRejected); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("second decision: expected ErrInvalidStatus, got %v", err)
	}

	if _, err := f.svc.DecideProposal(ctx, clientPrincipal, "missing", domain.ProposalAccepted); !errors.Is(err, domain.ErrProposalNotFound) {
		t.Fatalf("expected ErrProposalNotFound, got %v", err)
	}
}
