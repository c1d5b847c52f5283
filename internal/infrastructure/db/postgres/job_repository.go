package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/core/ports"
)

// jobSelect joins each job with the public fields of its owner.
const jobSelect = `
	SELECT j.id, j.client_id, j.title, j.description, j.budget, j.skills, j.status,
	       j.created_at, j.updated_at, u.name, u.email
	FROM jobs j
	JOIN users u ON u.id = j.client_id`

type JobRepository struct {
	db *pgxpool.Pool
}

var _ ports.JobRepository = (*JobRepository)(nil)

func NewJobRepository(db *pgxpool.Pool) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO jobs (id, client_id, title, description, budget, skills, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		job.ID,
		job.ClientID,
		job.Title,
		job.Description,
		job.Budget,
		nonNilSkills(job.Skills),
		string(job.Status),
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return writeError("create job", err)
	}
	return nil
}

func (r *JobRepository) FindByID(ctx context.Context, id string) (*domain.JobWithClient, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrJobNotFound
	}

	job, err := scanJob(r.db.QueryRow(ctx, jobSelect+` WHERE j.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("find job: %w", err)
	}
	return job, nil
}

func (r *JobRepository) List(ctx context.Context, filter ports.JobFilter) ([]domain.JobWithClient, error) {
	var (
		conds []string
		args  []any
	)
	if filter.ClientID != "" {
		if _, err := uuid.Parse(filter.ClientID); err != nil {
			return []domain.JobWithClient{}, nil
		}
		args = append(args, filter.ClientID)
		conds = append(conds, fmt.Sprintf("j.client_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("j.status = $%d", len(args)))
	}

	query := jobSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY j.created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []domain.JobWithClient{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

func scanJob(row pgx.Row) (*domain.JobWithClient, error) {
	var (
		j      domain.JobWithClient
		status string
	)
	err := row.Scan(
		&j.ID,
		&j.ClientID,
		&j.Title,
		&j.Description,
		&j.Budget,
		&j.Skills,
		&status,
		&j.CreatedAt,
		&j.UpdatedAt,
		&j.Client.Name,
		&j.Client.Email,
	)
	if err != nil {
		return nil, err
	}
	j.Status = domain.JobStatus(status)
	return &j, nil
}
