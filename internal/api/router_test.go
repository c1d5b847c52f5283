package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/core/ports"
	"github.com/gigboard/marketplace-api/internal/core/service"
)

// ---------------------------------------------------------------------------
// In-memory store backing the real services
// ---------------------------------------------------------------------------

type memStore struct {
	mu        sync.Mutex
	users     map[string]domain.User
	emails    map[string]string
	jobs      map[string]domain.Job
	proposals map[string]domain.Proposal
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[string]domain.User{},
		emails:    map[string]string{},
		jobs:      map[string]domain.Job{},
		proposals: map[string]domain.Proposal{},
	}
}

type memUsers struct{ *memStore }

func (m memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.emails[u.Email]; ok {
		return nil, domain.ErrDuplicateEmail
	}
	m.emails[u.Email] = u.ID
	m.users[u.ID] = *u
	out := *u
	return &out, nil
}

func (m memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.emails[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := m.users[id]
	return &u, nil
}

func (m memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (m memUsers) UpdateProfile(_ context.Context, id string, p domain.Profile, at time.Time) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Profile, u.UpdatedAt = p, at
	m.users[id] = u
	return &u, nil
}

type memJobs struct{ *memStore }

func (m memJobs) withClient(j domain.Job) domain.JobWithClient {
	u := m.users[j.ClientID]
	return domain.JobWithClient{Job: j, Client: domain.ClientSummary{Name: u.Profile.Name, Email: u.Email}}
}

func (m memJobs) Create(_ context.Context, j *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[j.ID] = *j
	return nil
}

func (m memJobs) FindByID(_ context.Context, id string) (*domain.JobWithClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	out := m.withClient(j)
	return &out, nil
}

func (m memJobs) List(_ context.Context, f ports.JobFilter) ([]domain.JobWithClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.JobWithClient
	for _, j := range m.jobs {
		if (f.ClientID == "" || j.ClientID == f.ClientID) && (f.Status == "" || j.Status == f.Status) {
			out = append(out, m.withClient(j))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

type memProposals struct{ *memStore }

func (m memProposals) Create(_ context.Context, p *domain.Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proposals[p.ID] = *p
	return nil
}

func (m memProposals) FindByID(_ context.Context, id string) (*domain.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok {
		return nil, domain.ErrProposalNotFound
	}
	return &p, nil
}

func (m memProposals) List(_ context.Context, f ports.ProposalFilter) ([]domain.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Proposal
	for _, p := range m.proposals {
		if (f.JobID == "" || p.JobID == f.JobID) && (f.FreelancerID == "" || p.FreelancerID == f.FreelancerID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m memProposals) UpdateStatus(_ context.Context, id string, from, to domain.ProposalStatus, at time.Time) (*domain.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok {
		return nil, domain.ErrProposalNotFound
	}
	if p.Status != from {
		return nil, domain.ErrInvalidStatus
	}
	p.Status, p.UpdatedAt = to, at
	m.proposals[id] = p
	return &p, nil
}

type okProbes struct{}

func (okProbes) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
func (okProbes) Readiness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

type testServer struct {
	t      *testing.T
	e      *echo.Echo
	tokens *service.TokenService
}

func newTestServer(t *testing.T, enforceRoles bool) *testServer {
	t.Helper()
	store := newMemStore()
	users, jobs, proposals := memUsers{store}, memJobs{store}, memProposals{store}
	log := zerolog.Nop()

	tokens, err := service.NewTokenService("router-test-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	policy := service.NewAccessPolicy(enforceRoles)

	e := NewRouter(Dependencies{
		Log:               log,
		FrontendURL:       "http://localhost:5173",
		Tokens:            tokens,
		Policy:            policy,
		Auth:              service.NewAuthService(users, tokens, log),
		Profiles:          service.NewProfileService(users, jobs, proposals, policy, log),
		Jobs:              service.NewJobService(jobs, nil, policy, log),
		Proposals:         service.NewProposalService(jobs, proposals, nil, policy, log),
		Health:            okProbes{},
		MetricsRegisterer: prometheus.NewRegistry(),
	})
	return &testServer{t: t, e: e, tokens: tokens}
}

func (s *testServer) do(method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	s.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func (s *testServer) register(email, role string) (id, token string) {
	s.t.Helper()
	body := `{"name":"` + role + `","email":"` + email + `","password":"secret123","role":"` + role + `"}`
	rec, out := s.do(http.MethodPost, "/api/auth/register", "", body)
	if rec.Code != http.StatusCreated {
		s.t.Fatalf("register %s: expected 201, got %d: %s", email, rec.Code, rec.Body.String())
	}
	user := out["user"].(map[string]any)
	return user["id"].(string), out["token"].(string)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRouter_RegisterLoginScenario(t *testing.T) {
	s := newTestServer(t, false)

	rec, out := s.do(http.MethodPost, "/api/auth/register", "", `{"name":"A","email":"a@x.com","password":"secret123","role":"client"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "assword") || strings.Contains(rec.Body.String(), "$2a$") {
		t.Fatalf("register response leaks password material: %s", rec.Body.String())
	}
	registeredID := out["user"].(map[string]any)["id"].(string)

	rec, out = s.do(http.MethodPost, "/api/auth/login", "", `{"email":"a@x.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized || out["error"] != "invalid credentials" {
		t.Fatalf("wrong password: expected 401 invalid credentials, got %d %v", rec.Code, out)
	}

	rec, out = s.do(http.MethodPost, "/api/auth/login", "", `{"email":"a@x.com","password":"secret123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	p, err := s.tokens.Verify(out["token"].(string))
	if err != nil {
		t.Fatalf("login token does not verify: %v", err)
	}
	if p.UserID != registeredID {
		t.Fatalf("token subject %q != registered id %q", p.UserID, registeredID)
	}
}

func TestRouter_DuplicateRegistration(t *testing.T) {
	s := newTestServer(t, false)
	s.register("dup@x.com", "client")

	rec, out := s.do(http.MethodPost, "/api/auth/register", "", `{"name":"B","email":"dup@x.com","password":"other","role":"freelancer"}`)
	if rec.Code != http.StatusBadRequest || out["error"] != "email already registered" {
		t.Fatalf("expected 400 email already registered, got %d %v", rec.Code, out)
	}
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, false)

	routes := []struct{ method, path, body string }{
		{http.MethodGet, "/api/users/profile", ""},
		{http.MethodPut, "/api/users/profile", `{"name":"x"}`},
		{http.MethodPost, "/api/jobs", `{"title":"t","description":"d","budget":1}`},
		{http.MethodPost, "/api/jobs/any/proposals", `{"cover_letter":"c","bid":1,"estimated_duration":1}`},
		{http.MethodPatch, "/api/proposals/any/status", `{"status":"accepted"}`},
	}
	for _, r := range routes {
		for _, token := range []string{"", "garbage"} {
			rec, _ := s.do(r.method, r.path, token, r.body)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("%s %s token=%q: expected 401, got %d", r.method, r.path, token, rec.Code)
			}
		}
	}

	for _, path := range []string{"/api/jobs", "/health", "/health/ready"} {
		if rec, _ := s.do(http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200 without token, got %d", path, rec.Code)
		}
	}
}

func TestRouter_ProfileUpdateOnlyTouchesCaller(t *testing.T) {
	s := newTestServer(t, false)
	_, tokenA := s.register("a@x.com", "client")
	idB, tokenB := s.register("b@x.com", "freelancer")

	rec, _ := s.do(http.MethodPut, "/api/users/profile", tokenA, `{"id":"`+idB+`","name":"Hacked"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	_, out := s.do(http.MethodGet, "/api/users/profile", tokenB, "")
	user := out["user"].(map[string]any)
	if name := user["profile"].(map[string]any)["name"]; name != "freelancer" {
		t.Fatalf("identity B was modified: name=%v", name)
	}
}

func TestRouter_JobAndProposalFlow(t *testing.T) {
	s := newTestServer(t, false)
	clientID, clientToken := s.register("client@x.com", "client")
	freelancerID, freelancerToken := s.register("free@x.com", "freelancer")
	_, otherToken := s.register("other@x.com", "client")

	rec, job := s.do(http.MethodPost, "/api/jobs", clientToken, `{"title":"API","description":"Build it","budget":1000,"client_id":"forged"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create job: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if job["client_id"] != clientID {
		t.Fatalf("job owner should be the caller, got %v", job["client_id"])
	}
	jobID := job["id"].(string)

	rec, prop := s.do(http.MethodPost, "/api/jobs/"+jobID+"/proposals", freelancerToken, `{"cover_letter":"Me","bid":900,"estimated_duration":10}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if prop["freelancer_id"] != freelancerID {
		t.Fatalf("freelancer should be the caller, got %v", prop["freelancer_id"])
	}
	propID := prop["id"].(string)

	if rec, _ := s.do(http.MethodGet, "/api/jobs/"+jobID+"/proposals", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("anonymous proposal listing: expected 200, got %d", rec.Code)
	}

	if rec, _ := s.do(http.MethodPatch, "/api/proposals/"+propID+"/status", otherToken, `{"status":"accepted"}`); rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner decision: expected 403, got %d", rec.Code)
	}
	if rec, _ := s.do(http.MethodPatch, "/api/proposals/"+propID+"/status", clientToken, `{"status":"accepted"}`); rec.Code != http.StatusOK {
		t.Fatalf("owner decision: expected 200, got %d", rec.Code)
	}
	if rec, _ := s.do(http.MethodPatch, "/api/proposals/"+propID+"/status", clientToken, `{"status":"rejected"}`); rec.Code != http.StatusConflict {
		t.Fatalf("second decision: expected 409, got %d", rec.Code)
	}

	if rec, _ := s.do(http.MethodGet, "/api/jobs/does-not-exist", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing job: expected 404, got %d", rec.Code)
	}
}

func TestRouter_EnforcedRolePolicy(t *testing.T) {
	s := newTestServer(t, true)
	_, clientToken := s.register("client@x.com", "client")
	_, freelancerToken := s.register("free@x.com", "freelancer")

	if rec, _ := s.do(http.MethodPost, "/api/jobs", freelancerToken, `{"title":"t","description":"d","budget":1}`); rec.Code != http.StatusForbidden {
		t.Fatalf("freelancer posting job: expected 403, got %d", rec.Code)
	}

	rec, job := s.do(http.MethodPost, "/api/jobs", clientToken, `{"title":"t","description":"d","budget":1}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("client posting job: expected 201, got %d", rec.Code)
	}
	jobID := job["id"].(string)

	if rec, _ := s.do(http.MethodPost, "/api/jobs/"+jobID+"/proposals", clientToken, `{"cover_letter":"c","bid":1,"estimated_duration":1}`); rec.Code != http.StatusForbidden {
		t.Fatalf("client proposing: expected 403, got %d", rec.Code)
	}
	if rec, _ := s.do(http.MethodGet, "/api/jobs/"+jobID+"/proposals", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous listing: expected 401, got %d", rec.Code)
	}
	if rec, _ := s.do(http.MethodGet, "/api/jobs/"+jobID+"/proposals", freelancerToken, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner listing: expected 403, got %d", rec.Code)
	}
	if rec, _ := s.do(http.MethodGet, "/api/jobs/"+jobID+"/proposals", clientToken, ""); rec.Code != http.StatusOK {
		t.Fatalf("owner listing: expected 200, got %d", rec.Code)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	s := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodOptions, "/api/jobs", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "http://localhost:5173" {
		t.Fatalf("expected allowed origin, got %q", got)
	}
}
