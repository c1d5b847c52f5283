package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/core/ports"
)

const proposalColumns = `id, job_id, freelancer_id, cover_letter, bid, estimated_duration, status, created_at, updated_at`

type ProposalRepository struct {
	db *pgxpool.Pool
}

var _ ports.ProposalRepository = (*ProposalRepository)(nil)

func NewProposalRepository(db *pgxpool.Pool) *ProposalRepository {
	return &ProposalRepository{db: db}
}

func (r *ProposalRepository) Create(ctx context.Context, p *domain.Proposal) error {
	query := `INSERT INTO proposals (` + proposalColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.JobID,
		p.FreelancerID,
		p.CoverLetter,
		p.Bid,
		p.EstimatedDuration,
		string(p.Status),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return writeError("create proposal", err)
	}
	return nil
}

func (r *ProposalRepository) FindByID(ctx context.Context, id string) (*domain.Proposal, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrProposalNotFound
	}

	p, err := scanProposal(r.db.QueryRow(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProposalNotFound
		}
		return nil, fmt.Errorf("find proposal: %w", err)
	}
	return p, nil
}

func (r *ProposalRepository) List(ctx context.Context, filter ports.ProposalFilter) ([]domain.Proposal, error) {
	var (
		conds []string
		args  []any
	)
	for col, val := range map[string]string{"job_id": filter.JobID, "freelancer_id": filter.FreelancerID} {
		if val == "" {
			continue
		}
		if _, err := uuid.Parse(val); err != nil {
			return []domain.Proposal{}, nil
		}
		args = append(args, val)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	query := `SELECT ` + proposalColumns + ` FROM proposals`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	proposals := []domain.Proposal{}
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		proposals = append(proposals, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate proposals: %w", err)
	}
	return proposals, nil
}

// UpdateStatus is a compare-and-set on the status column, so two concurrent
// decisions cannot both succeed.
func (r *ProposalRepository) UpdateStatus(ctx context.Context, id string, from, to domain.ProposalStatus, at time.Time) (*domain.Proposal, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrProposalNotFound
	}

	query := `
		UPDATE proposals SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
		RETURNING ` + proposalColumns

	p, err := scanProposal(r.db.QueryRow(ctx, query, id, string(from), string(to), at))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update proposal status: %w", err)
	}

	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, domain.ErrInvalidStatus
}

func scanProposal(row pgx.Row) (*domain.Proposal, error) {
	var (
		p      domain.Proposal
		status string
	)
	err := row.Scan(
		&p.ID,
		&p.JobID,
		&p.FreelancerID,
		&p.CoverLetter,
		&p.Bid,
		&p.EstimatedDuration,
		&status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = domain.ProposalStatus(status)
	return &p, nil
}
