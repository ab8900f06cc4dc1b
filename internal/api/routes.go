package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"thumblytic-backend-go/internal/config"
	"thumblytic-backend-go/internal/core"
	"thumblytic-backend-go/internal/metrics"
	"thumblytic-backend-go/internal/middleware"
)

// Services bundles the core services the HTTP layer depends on.
type Services struct {
	Profiles    core.ProfileService
	Generations core.GenerationService
	Suggestions core.SuggestionService
	Appeals     core.AppealService
	Admin       core.AdminService
	Accounts    core.AccountService
}

// SetupRoutes configures all application routes. Global middleware (logging, recovery,
// CORS, metrics) is expected to be installed on router by the caller.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
	limiter *middleware.RateLimiter,
	services Services,
	catalog *config.PlanCatalog,
) {
	profileHandler := NewProfileHandler(services.Profiles, logger)
	generationHandler := NewGenerationHandler(services.Generations, logger)
	suggestionHandler := NewSuggestionHandler(services.Suggestions, logger)
	appealHandler := NewAppealHandler(services.Appeals, logger)
	adminHandler := NewAdminHandler(services.Admin, services.Appeals, logger)
	authHandler := NewAuthHandler(services.Accounts, logger)
	plansHandler := NewPlansHandler(catalog)

	throttle := limiter.Handler()

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/plans", plansHandler.ListPlans)

		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/signup", throttle, authHandler.SignUp)
			authGroup.POST("/signout", authMW.VerifyToken(), authHandler.SignOut)
		}

		user := apiV1.Group("", authMW.VerifyToken())
		{
			user.GET("/profile", profileHandler.GetProfile)
			user.POST("/profile/sync", profileHandler.SyncProfile)

			user.POST("/generations", throttle, generationHandler.CreateGeneration)
			user.POST("/generations/edit", throttle, generationHandler.EditGeneration)
			user.GET("/generations", generationHandler.ListGenerations)

			user.POST("/suggestions", throttle, suggestionHandler.Suggest)
			user.POST("/audits", throttle, suggestionHandler.Audit)

			user.POST("/appeals", appealHandler.SubmitAppeal)
			user.GET("/appeals", appealHandler.ListMyAppeals)
		}

		admin := apiV1.Group("/admin", authMW.VerifyToken(), middleware.RequireAdmin())
		{
			admin.GET("/overview", adminHandler.Overview)
			admin.GET("/schema", adminHandler.Schema)
			admin.POST("/schema/migrate", adminHandler.MigrateSchema)
			admin.PATCH("/users/:id/suspension", adminHandler.SetSuspension)
			admin.POST("/users/:id/suspension/toggle", adminHandler.ToggleSuspension)
			admin.PUT("/users/:id/plan", adminHandler.OverridePlan)
			admin.POST("/plans/reset", adminHandler.ResetPlans)
			admin.POST("/appeals/:id/approve", adminHandler.ApproveAppeal)
			admin.POST("/appeals/:id/reject", adminHandler.RejectAppeal)
			admin.GET("/audit-logs", adminHandler.AuditLogs)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Thumblytic backend is healthy."})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("API routes configured under /api/v1, /health and /metrics")
}
