package ports

import (
	"context"

	"github.com/gigboard/marketplace-api/internal/core/domain"
)

// JobFilter narrows a job listing. Empty fields do not filter.
type JobFilter struct {
	ClientID string
	Status   domain.JobStatus
}

// JobRepository defines persistence operations for jobs.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	// FindByID returns the job joined with its owner's public summary.
	FindByID(ctx context.Context, id string) (*domain.JobWithClient, error)
	// List returns matching jobs, newest first.
	List(ctx context.Context, filter JobFilter) ([]domain.JobWithClient, error)
}
