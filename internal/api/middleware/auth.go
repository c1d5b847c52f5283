package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/core/ports"
	"github.com/gigboard/marketplace-api/internal/core/service"
	"github.com/gigboard/marketplace-api/internal/pkg/metrics"
)

// PrincipalKey is the echo context key holding the verified *domain.Principal.
const PrincipalKey = "principal"

type principalCtxKey struct{}

// Auth rejects the request with 401 unless it carries a valid bearer token.
// On success the resolved principal is stored in the echo context and in the
// request's context.Context.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return guard(verifier, false)
}

// OptionalAuth resolves the principal when an Authorization header is
// present and lets anonymous requests through. A header carrying a bad token
// is still rejected.
func OptionalAuth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return guard(verifier, true)
}

func guard(verifier ports.TokenVerifier, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				if optional {
					return next(c)
				}
				return unauthorized(c, service.TokenMissing, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return unauthorized(c, service.TokenMalformed, "invalid authorization header")
			}

			principal, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				state := service.TokenMalformed
				var te *service.TokenError
				if errors.As(err, &te) {
					state = te.State
				}
				return unauthorized(c, state, "invalid or expired token")
			}
			metrics.TokenVerificationsTotal.WithLabelValues(service.TokenValid.String()).Inc()

			c.Set(PrincipalKey, principal)
			req := c.Request()
			c.SetRequest(req.WithContext(context.WithValue(req.Context(), principalCtxKey{}, *principal)))

			return next(c)
		}
	}
}

func unauthorized(c echo.Context, state service.TokenState, msg string) error {
	metrics.TokenVerificationsTotal.WithLabelValues(state.String()).Inc()
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}

// Principal returns the principal set by Auth or OptionalAuth, if any.
func Principal(c echo.Context) (*domain.Principal, bool) {
	p, ok := c.Get(PrincipalKey).(*domain.Principal)
	return p, ok && p != nil
}

// PrincipalFromContext returns the principal attached to ctx by Auth.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(domain.Principal)
	return p, ok
}
