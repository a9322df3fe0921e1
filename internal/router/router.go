package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/knowlympics/knowlympics-backend/internal/config"
	"github.com/knowlympics/knowlympics-backend/internal/handler"
	"github.com/knowlympics/knowlympics-backend/internal/middleware"
	"github.com/knowlympics/knowlympics-backend/internal/response"
	"github.com/knowlympics/knowlympics-backend/internal/service"
)

// catalogMaxAge bounds how long clients may reuse subject and quiz listings.
const catalogMaxAge = time.Minute

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Subject *handler.SubjectHandler
	Quiz    *handler.QuizHandler
	Session *handler.SessionHandler
	WS      *handler.WSHandler
	Attempt *handler.AttemptHandler
	Export  *handler.ExportHandler
	Admin   *handler.AdminHandler
	System  *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// authLimiter guards the login and registration routes.
func SetupRouter(
	authService *service.AuthService,
	authLimiter *middleware.RateLimiter,
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	router.GET("/health", handlers.System.Health)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)

		auth.POST("/logout", middleware.RequireAuth(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.RequireAuth(authService))

	// ─── 2. Catalog (read-only, cacheable) ─────────────────────────────
	catalog := api.Group("")
	catalog.Use(middleware.Brotli(), middleware.CacheControl(catalogMaxAge))
	{
		catalog.GET("/subjects", handlers.Subject.GetAll)
		catalog.GET("/subjects/:id/chapters", handlers.Subject.Chapters)
		catalog.GET("/chapters/:id/quizzes", handlers.Quiz.ListByChapter)
		catalog.GET("/quizzes/:quiz_id", handlers.Quiz.Get)
	}

	// ─── 3. Quiz Sessions ──────────────────────────────────────────────
	sessions := api.Group("")
	sessions.Use(middleware.NoStore())
	{
		sessions.POST("/quizzes/:quiz_id/sessions", handlers.Session.Start)
		sessions.GET("/sessions/:session_id", handlers.Session.Get)
		sessions.PUT("/sessions/:session_id/answers", handlers.Session.Answer)
		sessions.POST("/sessions/:session_id/next", handlers.Session.Next)
		sessions.POST("/sessions/:session_id/previous", handlers.Session.Previous)
		sessions.POST("/sessions/:session_id/goto", handlers.Session.GoTo)
		sessions.POST("/sessions/:session_id/submit", handlers.Session.Submit)
		sessions.POST("/sessions/:session_id/resubmit", handlers.Session.Resubmit)
	}

	// ─── 4. History, Reports and Exports ───────────────────────────────
	history := api.Group("")
	history.Use(middleware.Brotli(), middleware.NoStore())
	{
		history.GET("/attempts", handlers.Attempt.History)
		history.GET("/attempts/summary", handlers.Attempt.Summary)
		history.GET("/attempts/reports/:month", handlers.Attempt.MonthlyReport)

		history.POST("/exports", handlers.Export.Start)
		history.GET("/exports/:job_id", handlers.Export.Status)
		history.GET("/exports/:job_id/download", handlers.Export.Download)
	}

	// ─── 5. WebSocket Group (token in query) ───────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/sessions/:session_id/stream", handlers.WS.SessionStream)
	}

	// ─── 6. Admin Group ────────────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAuth(authService), middleware.RequireAdmin())
	{
		adminAPI.GET("/dashboard", middleware.Brotli(), handlers.Admin.Dashboard)
		adminAPI.GET("/active-users", handlers.Admin.ActiveUsers)
		adminAPI.POST("/exports", handlers.Export.StartAll)

		// System Monitoring
		adminAPI.GET("/system/metrics", handlers.System.Metrics)
		adminAPI.GET("/system/metrics/stream", handlers.System.MetricsSSE)

		subjects := adminAPI.Group("/subjects")
		{
			subjects.POST("", handlers.Subject.Create)
			subjects.PUT("/:id", handlers.Subject.Update)
			subjects.DELETE("/:id", handlers.Subject.Delete)
		}

		chapters := adminAPI.Group("/chapters")
		{
			chapters.POST("", handlers.Subject.CreateChapter)
			chapters.PUT("/:id", handlers.Subject.UpdateChapter)
			chapters.DELETE("/:id", handlers.Subject.DeleteChapter)
		}

		quizzes := adminAPI.Group("/quizzes")
		{
			quizzes.POST("", handlers.Quiz.Create)
			quizzes.PUT("/:quiz_id", handlers.Quiz.Update)
			quizzes.DELETE("/:quiz_id", handlers.Quiz.Delete)
			quizzes.GET("/:quiz_id/questions", handlers.Quiz.Questions)
			quizzes.POST("/:quiz_id/questions", handlers.Quiz.CreateQuestion)
		}

		questions := adminAPI.Group("/questions")
		{
			questions.PUT("/:id", handlers.Quiz.UpdateQuestion)
			questions.DELETE("/:id", handlers.Quiz.DeleteQuestion)
		}
	}

	return router
}
