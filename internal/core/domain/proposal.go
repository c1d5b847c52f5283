package domain

import "time"

// ProposalStatus is the decision state of a proposal.
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
)

// CanTransitionTo reports whether a proposal may move from s to next.
// Only pending proposals can be decided, and a decision is final.
func (s ProposalStatus) CanTransitionTo(next ProposalStatus) bool {
	return s == ProposalPending && (next == ProposalAccepted || next == ProposalRejected)
}

// Proposal is a freelancer's bid on a job.
type Proposal struct {
	ID                string
	JobID             string
	FreelancerID      string
	CoverLetter       string
	Bid               float64
	EstimatedDuration int // days
	Status            ProposalStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
