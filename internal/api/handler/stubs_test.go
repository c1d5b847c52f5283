package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gigboard/marketplace-api/internal/api/middleware"
	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Function-field service stubs
// ---------------------------------------------------------------------------

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

type stubProfileService struct {
	getFn    func(ctx context.Context, p domain.Principal) (*ports.ProfileDetail, error)
	updateFn func(ctx context.Context, p domain.Principal, u domain.ProfileUpdate) (*domain.User, error)
}

func (s *stubProfileService) GetProfile(ctx context.Context, p domain.Principal) (*ports.ProfileDetail, error) {
	return s.getFn(ctx, p)
}

func (s *stubProfileService) UpdateProfile(ctx context.Context, p domain.Principal, u domain.ProfileUpdate) (*domain.User, error) {
	return s.updateFn(ctx, p, u)
}

type stubJobService struct {
	createFn func(ctx context.Context, p domain.Principal, in ports.CreateJobInput) (*ports.JobResult, error)
	listFn   func(ctx context.Context, f ports.JobFilter) ([]domain.JobWithClient, error)
	getFn    func(ctx context.Context, id string) (*domain.JobWithClient, error)
}

func (s *stubJobService) CreateJob(ctx context.Context, p domain.Principal, in ports.CreateJobInput) (*ports.JobResult, error) {
	return s.createFn(ctx, p, in)
}

func (s *stubJobService) ListJobs(ctx context.Context, f ports.JobFilter) ([]domain.JobWithClient, error) {
	return s.listFn(ctx, f)
}

func (s *stubJobService) GetJob(ctx context.Context, id string) (*domain.JobWithClient, error) {
	return s.getFn(ctx, id)
}

type stubProposalService struct {
	submitFn func(ctx context.Context, p domain.Principal, in ports.SubmitProposalInput) (*ports.ProposalResult, error)
	listFn   func(ctx context.Context, p *domain.Principal, jobID string) ([]domain.Proposal, error)
	decideFn func(ctx context.Context, p domain.Principal, id string, s domain.ProposalStatus) (*domain.Proposal, error)
}

func (s *stubProposalService) SubmitProposal(ctx context.Context, p domain.Principal, in ports.SubmitProposalInput) (*ports.ProposalResult, error) {
	return s.submitFn(ctx, p, in)
}

func (s *stubProposalService) ListJobProposals(ctx context.Context, p *domain.Principal, jobID string) ([]domain.Proposal, error) {
	return s.listFn(ctx, p, jobID)
}

func (s *stubProposalService) DecideProposal(ctx context.Context, p domain.Principal, id string, st domain.ProposalStatus) (*domain.Proposal, error) {
	return s.decideFn(ctx, p, id, st)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newJSONContext builds a context for method/target with an optional JSON
// body and, when principal is non-nil, the principal the Auth middleware
// would have set.
func newJSONContext(e *echo.Echo, method, target, body string, principal *domain.Principal) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if principal != nil {
		c.Set(middleware.PrincipalKey, principal)
	}
	return c, rec
}

func httpStatus(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}
