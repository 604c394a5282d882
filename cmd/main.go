package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/logstore/core/internal/api"
	"github.com/logstore/core/internal/cli"
	"github.com/logstore/core/internal/config"
	"github.com/logstore/core/internal/database"
	"github.com/logstore/core/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel)
	slog.SetDefault(appLogger)

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Initialize database
	db, err := database.InitializeWithLogger(cfg.DatabasePath, logger.Gorm(cfg.LogLevel))
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Check if running CLI command
	if len(os.Args) > 1 {
		cli.Execute(db, cfg, appLogger)
		return
	}

	if logger.ParseLevel(cfg.LogLevel) > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.SetupRouter(db, cfg, appLogger)

	appLogger.Info("server starting",
		"source", "main",
		"port", cfg.APIPort,
		"data_dir", cfg.DataDir,
		"database_path", cfg.DatabasePath,
	)
	if err := router.Run(":" + cfg.APIPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
