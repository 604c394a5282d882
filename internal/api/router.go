package api

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/logstore/core/internal/api/handlers"
	"github.com/logstore/core/internal/api/middleware"
	"github.com/logstore/core/internal/config"
	"github.com/logstore/core/internal/database"
	"github.com/logstore/core/internal/services"
	"gorm.io/gorm"
)

// SetupRouter initializes and returns the Gin router with all routes configured
func SetupRouter(db *gorm.DB, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger))
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	origins := cfg.AllowedOrigins()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: !allowsAll(origins),
		MaxAge:           12 * time.Hour,
	}))

	jwtManager := middleware.NewJWTManager(cfg.JWTSecret, cfg.TokenExpiry)

	// Initialize services
	userService := services.NewUserService(db, logger)
	logService := services.NewLogService(database.NewLogStore(db), logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, jwtManager, logger)
	userHandler := handlers.NewUserHandler(userService, logger)
	logHandler := handlers.NewLogHandler(logService, logger)

	// Health check endpoint (no auth required)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		// Public routes
		api.POST("/auth/login", authHandler.Login)
		api.POST("/users", userHandler.Register)
		api.POST("/users/restore",
			middleware.RestoreCredentialsMiddleware(userService, jwtManager),
			middleware.RestoreTokenMiddleware(jwtManager),
			userHandler.RestoreAccount,
		)

		// Protected routes (JWT required)
		protected := api.Group("")
		protected.Use(middleware.JWTMiddleware(jwtManager))
		{
			protected.POST("/auth/refresh", authHandler.RefreshToken)
			protected.GET("/auth/me", authHandler.GetCurrentUser)
			protected.DELETE("/users/me", userHandler.DeleteAccount)

			logs := protected.Group("/logs")
			{
				logs.GET("", logHandler.ListLogs)
				logs.GET("/sender/:sender", logHandler.GetBySender)
				logs.GET("/environment/:environment", logHandler.GetByEnvironment)
				logs.GET("/level/:level", logHandler.GetByLevel)
				logs.POST("", logHandler.CreateLog)

				// Static routes are matched before /:id
				logs.DELETE("", logHandler.DeleteAllLogs)
				logs.DELETE("/purge", logHandler.PurgeAllLogs)
				logs.POST("/restore", logHandler.RestoreAllLogs)

				logs.DELETE("/:id", logHandler.DeleteLog)
				logs.DELETE("/:id/purge", logHandler.PurgeLog)
				logs.POST("/:id/restore", logHandler.RestoreLog)
			}
		}
	}

	return router
}

func allowsAll(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
