package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gigboard/marketplace-api/internal/api/middleware"
	"github.com/gigboard/marketplace-api/internal/core/domain"
)

// ctxPrincipal returns the principal injected by the Auth middleware. Its
// absence means the route was wired without the guard; reject with 401
// rather than act on an anonymous caller.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.Principal(c)
	if !ok || p.UserID == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return *p, nil
}

// bindAndValidate decodes the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
