package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gigboard/marketplace-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, guard rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			log.Debug().Err(he.Internal).Str("path", c.Path()).Msg("http error")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes. Credential and token
	// failures get fixed messages so the cause is never revealed.
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusBadRequest, "email already registered"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrJobNotFound):
		return http.StatusNotFound, "job not found"
	case errors.Is(err, domain.ErrProposalNotFound):
		return http.StatusNotFound, "proposal not found"
	case errors.Is(err, domain.ErrInvalidStatus), errors.Is(err, domain.ErrIdempotencyConflict):
		return http.StatusConflict, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
