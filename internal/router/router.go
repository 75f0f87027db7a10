package router

import (
	"time"

	"ammotrack/internal/config"
	"ammotrack/internal/handler"
	"ammotrack/internal/middleware"
	"ammotrack/internal/repository"
	"ammotrack/internal/service"
	"ammotrack/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine plus the
// alert service, which the caller also schedules on a cron.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) (*gin.Engine, service.AlertService) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	lotRepo := repository.NewStockLotRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	reportRepo := repository.NewReportRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	auditSvc := service.NewAuditService(auditRepo)
	alertSvc := service.NewAlertService(alertRepo, lotRepo, auditSvc, dispatcher, cfg.ExpiryWarningDays)
	authSvc := service.NewAuthService(userRepo, alertSvc, auditSvc, rdb, cfg)
	inventorySvc := service.NewInventoryService(lotRepo, issueRepo, movementRepo, auditSvc)
	issueSvc := service.NewIssueService(issueRepo, lotRepo, movementRepo, userRepo, auditSvc)
	reportSvc := service.NewReportService(reportRepo, dispatcher, auditSvc)
	dashboardSvc := service.NewDashboardService(lotRepo, issueRepo, alertRepo, rdb, cfg.ExpiryWarningDays)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUserHandler(authSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	issuesH := handler.NewIssueHandler(issueSvc)
	alertsH := handler.NewAlertHandler(alertSvc)
	reportsH := handler.NewReportHandler(reportSvc)
	auditH := handler.NewAuditHandler(auditSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/auth/change-password", authH.ChangePassword)

		// Roles: clerk, supervisor, admin — declared per-endpoint
		inv := v1.Group("/inventory")
		{
			inv.GET("", middleware.RequireRole("clerk", "supervisor", "admin"), inventoryH.List)
			inv.GET("/:id", middleware.RequireRole("clerk", "supervisor", "admin"), inventoryH.Get)
			inv.GET("/:id/quantity", middleware.RequireRole("clerk", "supervisor", "admin"), inventoryH.GetQuantity)
			inv.GET("/:id/movements", middleware.RequireRole("supervisor", "admin"), inventoryH.Movements)
			inv.POST("", middleware.RequireRole("supervisor", "admin"), inventoryH.Create)
			inv.PUT("/:id", middleware.RequireRole("supervisor", "admin"), inventoryH.Update)
			inv.DELETE("/:id", middleware.RequireRole("admin"), inventoryH.Delete)
		}

		issues := v1.Group("/issues")
		{
			issues.POST("", middleware.RequireRole("clerk", "supervisor", "admin"), issuesH.Create)
			issues.GET("", middleware.RequireRole("clerk", "supervisor", "admin"), issuesH.List)
			issues.GET("/:id", middleware.RequireRole("clerk", "supervisor", "admin"), issuesH.Get)
			issues.PUT("/:id", middleware.RequireRole("supervisor", "admin"), issuesH.Update)
			issues.DELETE("/:id", middleware.RequireRole("admin"), issuesH.Delete)
		}

		alerts := v1.Group("/alerts", middleware.RequireRole("supervisor", "admin"))
		{
			alerts.GET("", alertsH.List)
			alerts.POST("/sweep", alertsH.Sweep)
			alerts.PATCH("/:id/acknowledge", alertsH.Acknowledge)
			alerts.PATCH("/:id/dismiss", alertsH.Dismiss)
			alerts.PATCH("/:id/resolve", alertsH.Resolve)
			alerts.DELETE("/:id", middleware.RequireRole("admin"), alertsH.Delete)
		}

		reports := v1.Group("/reports", middleware.RequireRole("supervisor", "admin"))
		{
			reports.POST("", reportsH.Generate)
			reports.GET("", reportsH.List)
			reports.GET("/:id", reportsH.Get)
			reports.GET("/:id/download", reportsH.Download)
			reports.DELETE("/:id", middleware.RequireRole("admin"), reportsH.Delete)
		}

		users := v1.Group("/users", middleware.RequireRole("admin"))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
		}

		v1.GET("/audit", middleware.RequireRole("admin"), auditH.List)
		v1.GET("/dashboard/stats", middleware.RequireRole("clerk", "supervisor", "admin"), dashboardH.Stats)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, alertSvc
}
