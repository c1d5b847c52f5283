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

type UserRepository struct {
	col *mongo.Collection
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type userDocument struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	Name         string    `bson:"name"`
	Title        string    `bson:"title,omitempty"`
	Skills       []string  `bson:"skills"`
	HourlyRate   *float64  `bson:"hourly_rate,omitempty"`
	Description  string    `bson:"description,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toUserDocument(u *domain.User) userDocument {
	return userDocument{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Name:         u.Profile.Name,
		Title:        u.Profile.Title,
		Skills:       nonNil(u.Profile.Skills),
		HourlyRate:   u.Profile.HourlyRate,
		Description:  u.Profile.Description,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         domain.Role(d.Role),
		Profile: domain.Profile{
			Name:        d.Name,
			Title:       d.Title,
			Skills:      nonNil(d.Skills),
			HourlyRate:  d.HourlyRate,
			Description: d.Description,
		},
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// Create inserts user. The unique index on email arbitrates concurrent
// registrations.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toUserDocument(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	created := *user
	return &created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// UpdateProfile rewrites the profile fields only; email, role and password
// hash are never part of the update document.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, profile domain.Profile, updatedAt time.Time) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"name":        profile.Name,
		"title":       profile.Title,
		"skills":      nonNil(profile.Skills),
		"description": profile.Description,
		"updated_at":  updatedAt,
	}
	update := bson.M{"$set": set}
	if profile.HourlyRate != nil {
		set["hourly_rate"] = *profile.HourlyRate
	} else {
		update["$unset"] = bson.M{"hourly_rate": ""}
	}

	var doc userDocument
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_key"),
	})
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

// clientSummaries resolves the public name and email of each id in one query.
func clientSummaries(ctx context.Context, users *mongo.Collection, ids []string) (map[string]domain.ClientSummary, error) {
	out := make(map[string]domain.ClientSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1, "email": 1}))
	if err != nil {
		return nil, fmt.Errorf("find clients: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc struct {
			ID    string `bson:"_id"`
			Name  string `bson:"name"`
			Email string `bson:"email"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode client: %w", err)
		}
		out[doc.ID] = domain.ClientSummary{Name: doc.Name, Email: doc.Email}
	}
	return out, cur.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
