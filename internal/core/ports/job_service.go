package ports

import (
	"context"

	"github.com/gigboard/marketplace-api/internal/core/domain"
)

// CreateJobInput carries the client-supplied fields of a new job. The owner
// is never part of it; it comes from the authenticated principal.
type CreateJobInput struct {
	Title          string
	Description    string
	Budget         float64
	Skills         []string
	IdempotencyKey string
}

// JobResult is the outcome of CreateJob. AlreadyExisted is set on an
// idempotent replay.
type JobResult struct {
	Job            domain.JobWithClient
	AlreadyExisted bool
}

type JobService interface {
	CreateJob(ctx context.Context, principal domain.Principal, in CreateJobInput) (*JobResult, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]domain.JobWithClient, error)
	GetJob(ctx context.Context, id string) (*domain.JobWithClient, error)
}
