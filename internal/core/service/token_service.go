package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/core/ports"
)

// AccessTokenTTL is the fixed validity window of every access token.
const AccessTokenTTL = 24 * time.Hour

// TokenState classifies the outcome of a verification.
type TokenState int

const (
	TokenValid TokenState = iota
	TokenMissing
	TokenMalformed
	TokenExpired
	TokenBadSignature
)

func (s TokenState) String() string {
	switch s {
	case TokenValid:
		return "valid"
	case TokenMissing:
		return "missing"
	case TokenMalformed:
		return "malformed"
	case TokenExpired:
		return "expired"
	case TokenBadSignature:
		return "bad_signature"
	default:
		return "unknown"
	}
}

// TokenError is returned by Verify for every rejected token. It matches
// domain.ErrUnauthenticated under errors.Is.
type TokenError struct {
	State TokenState
	Cause error
}

func (e *TokenError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: token %s: %v", domain.ErrUnauthenticated, e.State, e.Cause)
	}
	return fmt.Sprintf("%s: token %s", domain.ErrUnauthenticated, e.State)
}

func (e *TokenError) Unwrap() error { return domain.ErrUnauthenticated }

// accessClaims is the JWT payload. The subject is the identity id; email and
// role ride along so the guard never needs a store round-trip.
type accessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// TokenService issues and verifies HS256 access tokens with a single signing
// secret fixed at construction.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

var (
	_ ports.TokenIssuer   = (*TokenService)(nil)
	_ ports.TokenVerifier = (*TokenService)(nil)
)

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now for issuance and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService returns a TokenService signing with secret. An empty secret
// is a configuration error and must stop the process before it serves.
func NewTokenService(secret string, opts ...TokenOption) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("%w: token signing secret is empty", domain.ErrConfiguration)
	}

	s := &TokenService{
		secret: []byte(secret),
		ttl:    AccessTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	return s, nil
}

// Issue signs a token for user valid for AccessTokenTTL from now.
func (s *TokenService) Issue(user *domain.User) (ports.IssuedToken, error) {
	if user == nil || user.ID == "" {
		return ports.IssuedToken{}, errors.New("issue token: user has no id")
	}

	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.ttl)

	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: user.Email,
		Role:  string(user.Role),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return ports.IssuedToken{}, fmt.Errorf("issue token: %w", err)
	}

	return ports.IssuedToken{Token: signed, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// Verify checks signature and expiry of raw and resolves the caller.
func (s *TokenService) Verify(raw string) (*domain.Principal, error) {
	if raw == "" {
		return nil, &TokenError{State: TokenMissing}
	}

	claims := &accessClaims{}
	tkn, err := s.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, &TokenError{State: classify(err), Cause: err}
	}
	if !tkn.Valid || claims.Subject == "" {
		return nil, &TokenError{State: TokenMalformed}
	}

	return &domain.Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   domain.Role(claims.Role),
	}, nil
}

func classify(err error) TokenState {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return TokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return TokenBadSignature
	default:
		return TokenMalformed
	}
}
