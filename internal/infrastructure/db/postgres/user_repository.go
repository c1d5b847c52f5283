package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/core/ports"
)

const userColumns = `id, email, password_hash, role, name, title, skills, hourly_rate, description, created_at, updated_at`

type UserRepository struct {
	db *pgxpool.Pool
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts user. A concurrent or repeated insert of the same email is
// rejected by the users_email_key constraint and reported as
// domain.ErrDuplicateEmail.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + userColumns

	row := r.db.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.Profile.Name,
		user.Profile.Title,
		nonNilSkills(user.Profile.Skills),
		user.Profile.HourlyRate,
		user.Profile.Description,
		user.CreatedAt,
		user.UpdatedAt,
	)

	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, writeError("create user", err)
	}
	return created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}

	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

// UpdateProfile rewrites the profile columns only. Email, role and the
// password hash are not touched.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, profile domain.Profile, updatedAt time.Time) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}

	query := `
		UPDATE users
		SET name = $2, title = $3, skills = $4, hourly_rate = $5, description = $6, updated_at = $7
		WHERE id = $1
		RETURNING ` + userColumns

	row := r.db.QueryRow(ctx, query,
		id,
		profile.Name,
		profile.Title,
		nonNilSkills(profile.Skills),
		profile.HourlyRate,
		profile.Description,
		updatedAt,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, writeError("update profile", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&role,
		&u.Profile.Name,
		&u.Profile.Title,
		&u.Profile.Skills,
		&u.Profile.HourlyRate,
		&u.Profile.Description,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}

func nonNilSkills(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
