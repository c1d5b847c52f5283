package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/core/ports"
	"github.com/gigboard/marketplace-api/internal/pkg/metrics"
)

// PasswordHashCost is the bcrypt work factor for stored credentials.
const PasswordHashCost = 10

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

// decoyHash is compared against when the email is unknown so that both
// failure paths of VerifyCredentials spend one bcrypt comparison.
var decoyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("decoy-password"), PasswordHashCost)
	return h
})

// AuthService implements registration, credential verification and login.
type AuthService struct {
	repo   ports.UserRepository
	tokens ports.TokenIssuer
	log    zerolog.Logger
	now    func() time.Time
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(repo ports.UserRepository, tokens ports.TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, log: log, now: time.Now}
}

// Register stores a new identity and issues its first access token.
// A second registration for the same email fails with
// domain.ErrDuplicateEmail, as reported by the store's unique constraint.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if err := validateRegistration(in); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Profile:      in.Profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate_email").Inc()
			s.log.Info().Str("role", string(in.Role)).Msg("registration rejected: email taken")
			return nil, domain.ErrDuplicateEmail
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	issued, err := s.tokens.Issue(created)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")

	return &ports.AuthResult{User: created, Token: issued.Token, ExpiresAt: issued.ExpiresAt}, nil
}

// VerifyCredentials returns the identity for email when password matches its
// stored hash. Unknown email and wrong password both yield
// domain.ErrInvalidCredentials.
func (s *AuthService) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = comparePassword(decoyHash(), password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	if comparePassword([]byte(user.PasswordHash), password) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.VerifyCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			s.log.Info().Msg("login failed: invalid credentials")
			return nil, err
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	issued, err := s.tokens.Issue(user)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Debug().Str("user_id", user.ID).Msg("login succeeded")

	return &ports.AuthResult{User: user, Token: issued.Token, ExpiresAt: issued.ExpiresAt}, nil
}

func validateRegistration(in ports.RegisterInput) error {
	switch {
	case in.Email == "":
		return fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	case in.Password == "":
		return fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	case len(in.Password) > maxPasswordBytes:
		return fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, maxPasswordBytes)
	case !in.Role.Valid():
		return fmt.Errorf("%w: role must be client or freelancer", domain.ErrInvalidInput)
	case strings.TrimSpace(in.Profile.Name) == "":
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	case in.Profile.HourlyRate != nil && !domain.AmountFits(*in.Profile.HourlyRate):
		return fmt.Errorf("%w: hourly_rate must be a non-negative amount with at most two decimals", domain.ErrInvalidInput)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	start := time.Now()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	metrics.PasswordHashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func comparePassword(hash []byte, password string) error {
	start := time.Now()
	defer func() {
		metrics.PasswordHashDuration.WithLabelValues("compare").Observe(time.Since(start).Seconds())
	}()
	return bcrypt.CompareHashAndPassword(hash, []byte(password))
}
