package routes

import (
	"net/http"

	"research-tracker-api/controllers"
	"research-tracker-api/middleware"
	"research-tracker-api/models"
	"research-tracker-api/monitor"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine with the shared middleware chain and every route.
func NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.LoggingMiddleware(),
		middleware.ErrorHandler(),
		middleware.SecurityHeaders(),
		middleware.CORSMiddleware(),
	)
	monitor.RegisterMonitorRoutes(router)
	SetupRoutes(router)
	return router
}

func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.Use(middleware.RateLimitMiddleware(middleware.GeneralLimiter))
	{
		// Public routes
		public := api.Group("")
		{
			public.GET("/health", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{
					"success": true,
					"status":  "ok",
					"message": "Research Tracker API is running",
				})
			})

			public.GET("/levels", controllers.GetLevels)
			public.GET("/levels/:level", controllers.GetLevel)
			public.POST("/levels/evaluate", controllers.EvaluateLevel)
		}

		// Protected routes (require authentication)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/profile", controllers.UpdateProfile)
			protected.GET("/profile/level", controllers.GetProfileLevel)

			protected.GET("/dashboard/stats", controllers.GetDashboardStats)

			projects := protected.Group("/projects")
			{
				projects.GET("", controllers.GetProjects)
				projects.POST("", controllers.CreateProject)
				projects.GET("/:id", controllers.GetProject)
				projects.PUT("/:id", controllers.UpdateProject)
			}

			papers := protected.Group("/papers")
			{
				papers.GET("", controllers.GetPapers)
				papers.POST("", controllers.CreatePaper)
				papers.PUT("/:id", controllers.UpdatePaper)
			}

			experiments := protected.Group("/experiments")
			{
				experiments.GET("", controllers.GetExperiments)
				experiments.POST("", controllers.CreateExperiment)
			}

			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/stats", controllers.GetAdminStats)
				admin.GET("/users", controllers.GetAdminUsers)
				admin.PUT("/users/:id", controllers.UpdateAdminUser)
				admin.GET("/users/:id/promotion", controllers.PreviewUserPromotion)
				admin.POST("/users/:id/promote", controllers.PromoteUser)
				admin.GET("/users/:id/promotions", controllers.GetUserPromotions)

				admin.POST("/promotions/run", middleware.RateLimitMiddleware(middleware.BatchLimiter), controllers.RunPromotions)
				admin.GET("/promotions/runs", controllers.GetPromotionRuns)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Route not found"})
	})
}
