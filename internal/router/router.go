package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/classtrack/rollcall-backend/internal/config"
	"github.com/classtrack/rollcall-backend/internal/handler"
	"github.com/classtrack/rollcall-backend/internal/middleware"
	"github.com/classtrack/rollcall-backend/internal/policy"
	"github.com/classtrack/rollcall-backend/internal/response"
	"github.com/classtrack/rollcall-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Attendance *handler.AttendanceHandler
	Roster     *handler.RosterHandler
	Report     *handler.ReportHandler
	Export     *handler.ExportHandler
	Setting    *handler.SettingHandler
	Admin      *handler.AdminHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Prometheus scrape endpoint.
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	{
		publicAPI.GET("/settings", handlers.Setting.Display)
	}

	// Rate limiter for login attempts.
	authLimiter := middleware.NewRateLimiter(cfg.LoginRatePerMinute, time.Minute)

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
		auth.POST("/logout", middleware.RequireSession(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireSession(authService), handlers.Auth.Me)
	}

	// ─── 2. Attendance Group (Session + Policy) ────────────────────────
	attendance := router.Group("/api/v1/attendance")
	attendance.Use(middleware.RequireSession(authService))
	{
		attendance.GET("",
			middleware.RequireAction(policy.ActionViewRecords),
			handlers.Attendance.Day,
		)
		attendance.POST("/mark",
			middleware.RequireAction(policy.ActionMarkAttendance),
			handlers.Attendance.Mark,
		)
		attendance.POST("/toggle",
			middleware.RequireAction(policy.ActionMarkAttendance),
			handlers.Attendance.Toggle,
		)
		attendance.POST("/bulk",
			middleware.RequireAction(policy.ActionMarkAttendance),
			handlers.Attendance.Bulk,
		)
		attendance.DELETE("",
			middleware.RequireAction(policy.ActionMarkAttendance),
			handlers.Attendance.ClearDate,
		)
		attendance.POST("/save",
			middleware.RequireAction(policy.ActionSaveAttendance),
			handlers.Attendance.Save,
		)
	}

	// ─── 3. Roster Group ───────────────────────────────────────────────
	students := router.Group("/api/v1/students")
	students.Use(middleware.RequireSession(authService))
	{
		students.GET("",
			middleware.RequireAction(policy.ActionViewRecords),
			handlers.Roster.List,
		)
		students.POST("",
			middleware.RequireAction(policy.ActionManageRoster),
			handlers.Roster.Add,
		)
		students.DELETE("/:id",
			middleware.RequireAction(policy.ActionManageRoster),
			handlers.Roster.Remove,
		)
	}

	// ─── 4. Records and Analytics (Read Only) ──────────────────────────
	records := router.Group("/api/v1/records")
	records.Use(
		middleware.RequireSession(authService),
		middleware.RequireAction(policy.ActionViewRecords),
	)
	{
		records.GET("", handlers.Report.Records)
		records.GET("/:id/stats", handlers.Report.StudentStats)
	}

	analytics := router.Group("/api/v1/analytics")
	analytics.Use(
		middleware.RequireSession(authService),
		middleware.RequireAction(policy.ActionViewAnalytics),
	)
	{
		analytics.GET("/summary", handlers.Report.Summary)
		analytics.GET("/calendar/:id", handlers.Report.Calendar)
		analytics.GET("/weekday", handlers.Report.Weekday)
	}

	// ─── 5. Export Group ───────────────────────────────────────────────
	export := router.Group("/api/v1/export")
	export.Use(
		middleware.RequireSession(authService),
		middleware.RequireAction(policy.ActionViewRecords),
	)
	{
		export.GET("/csv", handlers.Export.CSV)
		export.GET("/report", handlers.Export.Report)
	}

	// ─── 6. Settings Group ─────────────────────────────────────────────
	settings := router.Group("/api/v1/settings")
	settings.Use(middleware.RequireSession(authService))
	{
		settings.GET("",
			middleware.RequireAction(policy.ActionViewRecords),
			handlers.Setting.GetAll,
		)
		settings.PUT("",
			middleware.RequireAction(policy.ActionManageSettings),
			handlers.Setting.Update,
		)
	}

	// ─── 7. Admin Group ────────────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(
		middleware.RequireSession(authService),
		middleware.RequireAction(policy.ActionManageSettings),
	)
	{
		adminAPI.POST("/reset-locks", handlers.Admin.ResetLocks)
		adminAPI.POST("/clear-data", handlers.Admin.ClearData)
		adminAPI.POST("/import", handlers.Admin.Import)
	}

	return router
}
