package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inkpress/production-system/internal/api/handler"
	"github.com/inkpress/production-system/internal/api/middleware"
	"github.com/inkpress/production-system/internal/core/domain"
	"github.com/inkpress/production-system/internal/core/service"
	"github.com/inkpress/production-system/internal/infrastructure/config"
	mongodb "github.com/inkpress/production-system/internal/infrastructure/db/mongo"
	redisdb "github.com/inkpress/production-system/internal/infrastructure/db/redis"
	"github.com/inkpress/production-system/internal/infrastructure/queue"
)

// NewRouter builds the Echo instance with all routes registered and returns
// it together with the progress-report dispatcher (started by the caller).
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) (*echo.Echo, *queue.Dispatcher) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	scopes := middleware.DefaultScopes()
	adminScope, staffScope, portalScope := scopes[0], scopes[1], scopes[2]

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("printshop"))
	e.Use(middleware.Gateway(scopes))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	jobRepo := mongodb.NewJobRepository(db)
	progressRepo := mongodb.NewProgressRepository(db)
	hourLogRepo := mongodb.NewHourLogRepository(db)
	sessions := redisdb.NewSessionStore(rdb)

	authService := service.NewAuthService(userRepo, sessions, cfg.JWTSecret, cfg.SessionTTL, log)
	jobService := service.NewJobService(jobRepo, progressRepo, log)
	timesheetService := service.NewTimesheetService(hourLogRepo, cfg.SweepCapHours, log)
	dispatcher := queue.NewDispatcher(cfg.DispatcherWorkers, jobService, log)

	authHandler := handler.NewAuthHandler(authService, cfg.SessionTTL)
	jobHandler := handler.NewJobHandler(jobService)
	progressHandler := handler.NewProgressHandler(jobService, dispatcher)
	timesheetHandler := handler.NewTimesheetHandler(timesheetService)

	// --- Auth routes (public) ---
	e.POST("/auth/register", authHandler.Register)
	for _, scope := range scopes {
		e.POST(scope.LoginPath, authHandler.Login(scope))
		e.POST(scope.PathPrefix+"/logout", authHandler.Logout(scope))
	}

	// --- Admin scope ---
	admin := e.Group("/admin",
		middleware.Verify(authService, adminScope),
		middleware.RBAC(domain.RoleAdmin),
	)
	admin.POST("/jobs", jobHandler.Create)
	admin.GET("/jobs", jobHandler.List)
	admin.GET("/jobs/:id", jobHandler.Get)
	admin.PATCH("/jobs/:id/status", jobHandler.SetStatus)
	admin.POST("/timesheet/sweep", timesheetHandler.Sweep)

	// --- Staff scope ---
	staff := e.Group("/staff",
		middleware.Verify(authService, staffScope),
		middleware.RBAC(domain.RoleEmployee),
	)
	staff.GET("/jobs", jobHandler.List)
	staff.GET("/jobs/:id", jobHandler.Get)
	staff.PATCH("/jobs/:id/status", jobHandler.SetStatus)
	staff.POST("/jobs/:id/progress", progressHandler.Record)
	staff.POST("/progress", progressHandler.Receive)
	staff.POST("/progress/batch", progressHandler.ReceiveBatch)
	staff.POST("/hourlogs/start", timesheetHandler.Start)
	staff.POST("/hourlogs/:id/stop", timesheetHandler.Stop)
	staff.GET("/hourlogs", timesheetHandler.List)

	// --- Portal scope (read-only) ---
	portal := e.Group("/portal",
		middleware.Verify(authService, portalScope),
		middleware.RBAC(domain.RoleCustomer),
	)
	portal.GET("/jobs", jobHandler.List)
	portal.GET("/jobs/:id", jobHandler.Get)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, dispatcher
}
