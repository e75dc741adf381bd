package routes

import (
	"desk-console/internal/api/handlers"
	"desk-console/internal/api/middleware"
	"desk-console/internal/config"
	"desk-console/internal/models"
	"desk-console/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config, log *zap.Logger) {
	// Initialize services
	authService := services.NewAuthService(cfg)
	auditService := services.NewAuditService(log)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, auditService, cfg)
	userHandler := handlers.NewUserHandler(cfg, auditService)
	deviceHandler := handlers.NewDeviceHandler(cfg, auditService)

	// Middleware
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.SessionSweeper(authService, log))

	// Public routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"message": "Desk Console API is running",
			})
		})

		// Auth routes (public)
		auth := api.Group("/auth")
		{
			login := auth.Group("")
			if cfg.Security.RateLimit.Enabled {
				limiter := middleware.NewLoginRateLimiter(
					cfg.Security.RateLimit.LoginPerMinute,
					cfg.Security.RateLimit.Burst,
				)
				login.Use(limiter.Middleware())
			}
			login.POST("/login", authHandler.Login)
		}
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.RequireAuth(authService))
	{
		// Auth routes (protected)
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/verify", authHandler.Verify)
		protected.POST("/auth/change-password", authHandler.ChangePassword)

		// Device routes: reads for any authenticated role, mutations for
		// admin and operator. The role sets are explicit per route.
		protected.GET("/devices", deviceHandler.GetDevices)
		protected.GET("/stats", deviceHandler.GetStats)

		device := protected.Group("/device")
		device.Use(middleware.RequireRole(models.RoleAdmin, models.RoleOperator))
		{
			device.PUT("/:id", deviceHandler.UpdateDevice)
			device.DELETE("/:id", deviceHandler.DeleteDevice)
			device.POST("/:id/ban", deviceHandler.BanDevice)
			device.POST("/:id/unban", deviceHandler.UnbanDevice)
		}

		// User management routes (admin only)
		users := protected.Group("/users")
		users.Use(middleware.RequireRole(models.RoleAdmin))
		{
			users.GET("", userHandler.GetUsers)
			users.POST("", userHandler.CreateUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}
	}
}
