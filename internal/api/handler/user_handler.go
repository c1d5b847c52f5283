package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gigboard/marketplace-api/internal/core/ports"
)

// UserHandler serves the caller's own profile. The identity is always taken
// from the verified token.
type UserHandler struct {
	profiles ports.ProfileService
}

func NewUserHandler(profiles ports.ProfileService) *UserHandler {
	return &UserHandler{profiles: profiles}
}

// GetProfile handles GET /api/users/profile.
//
// @Summary      Get own profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/profile [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	detail, err := h.profiles.GetProfile(c.Request().Context(), principal)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		User:      toUserView(detail.User),
		Jobs:      toJobViews(detail.Jobs),
		Proposals: toProposalViews(detail.Proposals),
	})
}

// UpdateProfile handles PUT /api/users/profile.
//
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  userView
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/users/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.profiles.UpdateProfile(c.Request().Context(), principal, toProfileUpdate(req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toUserView(user))
}
