package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/core/ports"
)

type ProposalRepository struct {
	col *mongo.Collection
}

var _ ports.ProposalRepository = (*ProposalRepository)(nil)

func NewProposalRepository(db *mongo.Database) *ProposalRepository {
	return &ProposalRepository{col: db.Collection(collectionProposals)}
}

type proposalDocument struct {
	ID                string    `bson:"_id"`
	JobID             string    `bson:"job_id"`
	FreelancerID      string    `bson:"freelancer_id"`
	CoverLetter       string    `bson:"cover_letter"`
	Bid               float64   `bson:"bid"`
	EstimatedDuration int       `bson:"estimated_duration"`
	Status            string    `bson:"status"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

func (d proposalDocument) toDomain() *domain.Proposal {
	return &domain.Proposal{
		ID:                d.ID,
		JobID:             d.JobID,
		FreelancerID:      d.FreelancerID,
		CoverLetter:       d.CoverLetter,
		Bid:               d.Bid,
		EstimatedDuration: d.EstimatedDuration,
		Status:            domain.ProposalStatus(d.Status),
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
}

func (r *ProposalRepository) Create(ctx context.Context, p *domain.Proposal) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, proposalDocument{
		ID:                p.ID,
		JobID:             p.JobID,
		FreelancerID:      p.FreelancerID,
		CoverLetter:       p.CoverLetter,
		Bid:               p.Bid,
		EstimatedDuration: p.EstimatedDuration,
		Status:            string(p.Status),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert proposal: %w", err)
	}
	return nil
}

func (r *ProposalRepository) FindByID(ctx context.Context, id string) (*domain.Proposal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc proposalDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProposalNotFound
		}
		return nil, fmt.Errorf("find proposal: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ProposalRepository) List(ctx context.Context, filter ports.ProposalFilter) ([]domain.Proposal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.JobID != "" {
		query["job_id"] = filter.JobID
	}
	if filter.FreelancerID != "" {
		query["freelancer_id"] = filter.FreelancerID
	}

	cur, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	var docs []proposalDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode proposals: %w", err)
	}

	out := make([]domain.Proposal, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.toDomain())
	}
	return out, nil
}

// UpdateStatus matches on both id and the expected current status, so of two
// racing decisions only one finds the document.
func (r *ProposalRepository) UpdateStatus(ctx context.Context, id string, from, to domain.ProposalStatus, at time.Time) (*domain.Proposal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc proposalDocument
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": string(from)},
		bson.M{"$set": bson.M{"status": string(to), "updated_at": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update proposal status: %w", err)
	}

	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, domain.ErrInvalidStatus
}

func (r *ProposalRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "job_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "freelancer_id", Value: 1}}},
	})
	return err
}
