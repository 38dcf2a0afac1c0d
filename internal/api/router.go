package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/jobtracker/jobtracker-api/internal/api/handler"
	"github.com/jobtracker/jobtracker-api/internal/api/middleware"
	"github.com/jobtracker/jobtracker-api/internal/core/domain"
	"github.com/jobtracker/jobtracker-api/internal/core/ports"
)

// Dependencies is everything the HTTP layer needs, wired in cmd/server.
type Dependencies struct {
	Auth         ports.AuthService
	Applications ports.ApplicationService
	Admin        ports.AdminService
	// Checks are pinged by GET /health/ready, keyed by dependency name.
	Checks map[string]ports.Checker
	Log    zerolog.Logger

	EnableSwagger bool
	// EnableMetrics registers echoprometheus with the default registry, which
	// can only happen once per process.
	EnableMetrics bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// Routes are declared with a trailing slash; this makes it optional.
	e.Pre(echomiddleware.AddTrailingSlashWithConfig(echomiddleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/swagger/")
		},
	}))

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	if deps.EnableMetrics {
		e.Use(echoprometheus.NewMiddleware("jobtracker"))
		e.GET("/metrics/", echoprometheus.NewHandler())
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	appHandler := handler.NewApplicationHandler(deps.Applications)
	adminHandler := handler.NewAdminHandler(deps.Admin)
	authMiddleware := middleware.Auth(deps.Auth)

	api := e.Group("/api")

	// --- Auth routes (anonymous) ---
	api.POST("/register/", authHandler.Register)
	api.POST("/token/", authHandler.ObtainToken)
	api.POST("/token/refresh/", authHandler.RefreshToken)
	api.POST("/token/verify/", authHandler.VerifyToken)
	api.POST("/token/blacklist/", authHandler.BlacklistToken)

	// --- Applications (owner-scoped) ---
	apps := api.Group("/applications", authMiddleware)
	apps.GET("/", appHandler.List)
	apps.POST("/", appHandler.Create)
	apps.GET("/:id/", appHandler.Get)
	apps.PUT("/:id/", appHandler.Replace)
	apps.PATCH("/:id/", appHandler.Patch)
	apps.DELETE("/:id/", appHandler.Delete)

	// --- Admin (staff only) ---
	admin := api.Group("/admin", authMiddleware, middleware.RBAC(domain.RoleStaff))
	admin.GET("/applications/", adminHandler.ListApplications)
	admin.GET("/users/", adminHandler.ListUsers)
	admin.DELETE("/users/:id/", adminHandler.DeleteUser)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health/", healthHandler.Liveness)
	e.GET("/health/ready/", healthDepsHandler.Readiness)

	if deps.EnableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	return e
}
