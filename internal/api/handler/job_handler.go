package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/core/ports"
)

type JobHandler struct {
	service ports.JobService
}

func NewJobHandler(service ports.JobService) *JobHandler {
	return &JobHandler{service: service}
}

// Create handles POST /api/jobs. The owner is the authenticated caller.
//
// @Summary      Post a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string            false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createJobRequest  true   "Job details"
// @Success      201              {object}  jobView
// @Success      200              {object}  jobView  "Replayed by Idempotency-Key"
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Router       /api/jobs [post]
func (h *JobHandler) Create(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createJobRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.CreateJob(c.Request().Context(), principal, ports.CreateJobInput{
		Title:          req.Title,
		Description:    req.Description,
		Budget:         req.Budget,
		Skills:         req.Skills,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if res.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, toJobView(res.Job))
}

// List handles GET /api/jobs.
//
// @Summary      List jobs
// @Tags         jobs
// @Produce      json
// @Param        status  query     string  false  "Filter by status"  Enums(open, in_progress, completed)
// @Success      200     {array}   jobView
// @Failure      400     {object}  errorResponse
// @Router       /api/jobs [get]
func (h *JobHandler) List(c echo.Context) error {
	jobs, err := h.service.ListJobs(c.Request().Context(), ports.JobFilter{
		Status: domain.JobStatus(c.QueryParam("status")),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobViews(jobs))
}

// Get handles GET /api/jobs/:id.
//
// @Summary      Get a job
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job id"
// @Success      200  {object}  jobView
// @Failure      404  {object}  errorResponse
// @Router       /api/jobs/{id} [get]
func (h *JobHandler) Get(c echo.Context) error {
	job, err := h.service.GetJob(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobView(*job))
}
