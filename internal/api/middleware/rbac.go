package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/pkg/metrics"
)

// RequireRole lets the request through only when the authenticated principal
// holds one of allowedRoles. It must run after Auth.
func RequireRole(action string, allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := Principal(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}
			if _, ok := allowed[p.Role]; !ok {
				metrics.AuthorizationDenialsTotal.WithLabelValues(action).Inc()
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
			}
			return next(c)
		}
	}
}
