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

type JobRepository struct {
	col   *mongo.Collection
	users *mongo.Collection
}

var _ ports.JobRepository = (*JobRepository)(nil)

func NewJobRepository(db *mongo.Database) *JobRepository {
	return &JobRepository{
		col:   db.Collection(collectionJobs),
		users: db.Collection(collectionUsers),
	}
}

type jobDocument struct {
	ID          string    `bson:"_id"`
	ClientID    string    `bson:"client_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Budget      float64   `bson:"budget"`
	Skills      []string  `bson:"skills"`
	Status      string    `bson:"status"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d jobDocument) toDomain() domain.Job {
	return domain.Job{
		ID:          d.ID,
		ClientID:    d.ClientID,
		Title:       d.Title,
		Description: d.Description,
		Budget:      d.Budget,
		Skills:      nonNil(d.Skills),
		Status:      domain.JobStatus(d.Status),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// Create inserts a new job document.
func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, jobDocument{
		ID:          job.ID,
		ClientID:    job.ClientID,
		Title:       job.Title,
		Description: job.Description,
		Budget:      job.Budget,
		Skills:      nonNil(job.Skills),
		Status:      string(job.Status),
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *JobRepository) FindByID(ctx context.Context, id string) (*domain.JobWithClient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc jobDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("find job: %w", err)
	}

	clients, err := clientSummaries(ctx, r.users, []string{doc.ClientID})
	if err != nil {
		return nil, err
	}
	return &domain.JobWithClient{Job: doc.toDomain(), Client: clients[doc.ClientID]}, nil
}

// List returns matching jobs newest first.
func (r *JobRepository) List(ctx context.Context, filter ports.JobFilter) ([]domain.JobWithClient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.ClientID != "" {
		query["client_id"] = filter.ClientID
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}

	cur, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	var docs []jobDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}

	ids := make([]string, 0, len(docs))
	seen := make(map[string]bool, len(docs))
	for _, d := range docs {
		if !seen[d.ClientID] {
			seen[d.ClientID] = true
			ids = append(ids, d.ClientID)
		}
	}
	clients, err := clientSummaries(ctx, r.users, ids)
	if err != nil {
		return nil, err
	}

	jobs := make([]domain.JobWithClient, 0, len(docs))
	for _, d := range docs {
		jobs = append(jobs, domain.JobWithClient{Job: d.toDomain(), Client: clients[d.ClientID]})
	}
	return jobs, nil
}

func (r *JobRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "client_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}
