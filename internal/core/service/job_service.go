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

type JobService struct {
	repo   ports.JobRepository
	idem   idempotency
	policy AccessPolicy
	log    zerolog.Logger
	now    func() time.Time
}

var _ ports.JobService = (*JobService)(nil)

// NewJobService wires a JobService. A nil idem disables Idempotency-Key
// handling.
func NewJobService(repo ports.JobRepository, idem ports.IdempotencyStore, policy AccessPolicy, log zerolog.Logger) *JobService {
	return &JobService{repo: repo, idem: newIdempotency(idem, log), policy: policy, log: log, now: time.Now}
}

// CreateJob posts a job owned by principal. If the idempotency key was
// already used by the same principal, the previously created job is returned
// without side effects.
func (s *JobService) CreateJob(ctx context.Context, principal domain.Principal, in ports.CreateJobInput) (*ports.JobResult, error) {
	if err := s.policy.CanCreateJob(principal); err != nil {
		return nil, err
	}
	if err := validateJob(in); err != nil {
		return nil, err
	}

	scope := "job:" + principal.UserID
	replayID, claimed, err := s.idem.begin(ctx, scope, in.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if replayID != "" {
		existing, err := s.repo.FindByID(ctx, replayID)
		if err != nil {
			return nil, fmt.Errorf("create job: replay %s: %w", replayID, err)
		}
		metrics.IdempotentReplaysTotal.WithLabelValues("job").Inc()
		s.log.Info().Str("idempotency_key", in.IdempotencyKey).Str("job_id", replayID).Msg("idempotent replay")
		return &ports.JobResult{Job: *existing, AlreadyExisted: true}, nil
	}

	now := s.now().UTC()
	job := &domain.Job{
		ID:          uuid.NewString(),
		ClientID:    principal.UserID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Budget:      in.Budget,
		Skills:      in.Skills,
		Status:      domain.JobOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if job.Skills == nil {
		job.Skills = []string{}
	}

	err = s.repo.Create(ctx, job)
	if claimed {
		s.idem.finish(ctx, scope, in.IdempotencyKey, job.ID, err)
	}
	if err != nil {
		s.log.Error().Err(err).Str("client_id", principal.UserID).Msg("failed to create job")
		return nil, fmt.Errorf("create job: %w", err)
	}
	metrics.JobsCreatedTotal.Inc()

	s.log.Info().Str("job_id", job.ID).Str("client_id", principal.UserID).Msg("job created")

	created, err := s.repo.FindByID(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("create job: reload: %w", err)
	}
	return &ports.JobResult{Job: *created}, nil
}

func (s *JobService) ListJobs(ctx context.Context, filter ports.JobFilter) ([]domain.JobWithClient, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown job status %q", domain.ErrInvalidInput, filter.Status)
	}
	jobs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

func (s *JobService) GetJob(ctx context.Context, id string) (*domain.JobWithClient, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

func validateJob(in ports.CreateJobInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	case strings.TrimSpace(in.Description) == "":
		return fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	case in.Budget <= 0:
		return fmt.Errorf("%w: budget must be greater than 0", domain.ErrInvalidInput)
	case !domain.AmountFits(in.Budget):
		return fmt.Errorf("%w: budget must have at most two decimals and not exceed %.2f", domain.ErrInvalidInput, domain.MaxAmount)
	}
	return nil
}
