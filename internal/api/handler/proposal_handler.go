package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gigboard/marketplace-api/internal/api/middleware"
	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/core/ports"
)

type ProposalHandler struct {
	service ports.ProposalService
}

func NewProposalHandler(service ports.ProposalService) *ProposalHandler {
	return &ProposalHandler{service: service}
}

// Submit handles POST /api/jobs/:id/proposals.
//
// @Summary      Submit a proposal
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id               path      string                 true   "Job id"
// @Param        Idempotency-Key  header    string                 false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      submitProposalRequest  true   "Proposal"
// @Success      201              {object}  proposalView
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /api/jobs/{id}/proposals [post]
func (h *ProposalHandler) Submit(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req submitProposalRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.SubmitProposal(c.Request().Context(), principal, ports.SubmitProposalInput{
		JobID:             c.Param("id"),
		CoverLetter:       req.CoverLetter,
		Bid:               req.Bid,
		EstimatedDuration: req.EstimatedDuration,
		IdempotencyKey:    c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if res.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, toProposalView(res.Proposal))
}

// ListForJob handles GET /api/jobs/:id/proposals.
//
// @Summary      List proposals for a job
// @Tags         proposals
// @Produce      json
// @Param        id   path      string  true  "Job id"
// @Success      200  {array}   proposalView
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/jobs/{id}/proposals [get]
func (h *ProposalHandler) ListForJob(c echo.Context) error {
	principal, _ := middleware.Principal(c)

	proposals, err := h.service.ListJobProposals(c.Request().Context(), principal, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProposalViews(proposals))
}

// Decide handles PATCH /api/proposals/:id/status.
//
// @Summary      Accept or reject a proposal
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Proposal id"
// @Param        body  body      decideProposalRequest  true  "Decision"
// @Success      200   {object}  proposalView
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/proposals/{id}/status [patch]
func (h *ProposalHandler) Decide(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req decideProposalRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	p, err := h.service.DecideProposal(c.Request().Context(), principal, c.Param("id"), domain.ProposalStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProposalView(*p))
}
