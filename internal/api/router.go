package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/gigboard/marketplace-api/internal/api/handler"
	"github.com/gigboard/marketplace-api/internal/api/middleware"
	"github.com/gigboard/marketplace-api/internal/core/domain"
	"github.com/gigboard/marketplace-api/internal/core/ports"
	"github.com/gigboard/marketplace-api/internal/core/service"
)

// HealthProbes serves the liveness and readiness endpoints.
type HealthProbes interface {
	Liveness(c echo.Context) error
	Readiness(c echo.Context) error
}

// Dependencies is everything the router needs. Services are built by the
// caller so storage choices stay out of the transport layer.
type Dependencies struct {
	Log         zerolog.Logger
	FrontendURL string

	Tokens    ports.TokenVerifier
	Policy    service.AccessPolicy
	Auth      ports.AuthService
	Profiles  ports.ProfileService
	Jobs      ports.JobService
	Proposals ports.ProposalService
	Health    HealthProbes

	// MetricsRegisterer receives the HTTP request metrics. Nil means the
	// default prometheus registerer.
	MetricsRegisterer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{deps.FrontendURL},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, "Idempotency-Key"},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "marketplace",
		Registerer: deps.MetricsRegisterer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Operational endpoints (no auth required) ---
	if deps.Health != nil {
		e.GET("/health", deps.Health.Liveness)
		e.GET("/health/ready", deps.Health.Readiness)
	}
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Profiles)
	jobHandler := handler.NewJobHandler(deps.Jobs)
	proposalHandler := handler.NewProposalHandler(deps.Proposals)

	requireAuth := middleware.Auth(deps.Tokens)
	optionalAuth := middleware.OptionalAuth(deps.Tokens)

	// Role guards only exist when the policy enforces roles; the service
	// layer applies the same policy either way.
	var clientsOnly, freelancersOnly []echo.MiddlewareFunc
	if deps.Policy.EnforcesRoles() {
		clientsOnly = append(clientsOnly, middleware.RequireRole("create_job", domain.RoleClient))
		freelancersOnly = append(freelancersOnly, middleware.RequireRole("submit_proposal", domain.RoleFreelancer))
	}

	api := e.Group("/api")

	// --- Auth routes ---
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// --- Users ---
	users := api.Group("/users", requireAuth)
	users.GET("/profile", userHandler.GetProfile)
	users.PUT("/profile", userHandler.UpdateProfile)

	// --- Jobs ---
	api.GET("/jobs", jobHandler.List)
	api.GET("/jobs/:id", jobHandler.Get)
	api.POST("/jobs", jobHandler.Create, append([]echo.MiddlewareFunc{requireAuth}, clientsOnly...)...)

	// --- Proposals ---
	api.GET("/jobs/:id/proposals", proposalHandler.ListForJob, optionalAuth)
	api.POST("/jobs/:id/proposals", proposalHandler.Submit, append([]echo.MiddlewareFunc{requireAuth}, freelancersOnly...)...)
	api.PATCH("/proposals/:id/status", proposalHandler.Decide, requireAuth)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
