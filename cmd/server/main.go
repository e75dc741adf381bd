package main

import (
	"flag"
	"fmt"
	"log"

	"desk-console/internal/api/routes"
	"desk-console/internal/config"
	"desk-console/internal/logger"
	"desk-console/internal/models"
	"desk-console/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize database
	if err := models.InitDB(cfg); err != nil {
		zlog.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Create default admin if the users table is empty
	authService := services.NewAuthService(cfg)
	password, err := authService.EnsureDefaultAdmin()
	if err != nil {
		zlog.Warn("Failed to create default admin", zap.Error(err))
	} else if password != "" {
		zlog.Warn("Created default admin account; change this password after first login",
			zap.String("username", "admin"),
			zap.String("password", password))
	}

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	routes.SetupRoutes(r, cfg, zlog)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	zlog.Info("Starting Desk Console server", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		zlog.Fatal("Failed to start server", zap.Error(err))
	}
}
