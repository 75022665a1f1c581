package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/viamarket/trip-ingestor/internal/api/batch"
	"github.com/viamarket/trip-ingestor/internal/config"
	"github.com/viamarket/trip-ingestor/internal/loaders"
	"github.com/viamarket/trip-ingestor/internal/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	if err := utils.InitLogger(cfg.LogLevel, cfg.Debug); err != nil {
		panic(err)
	}
	defer utils.Zlog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	db, err := loaders.NewPostgresClient(ctx, cfg.DatabaseURL)
	if err != nil {
		utils.Zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	api := router.Group("/api/v1")
	batch.RegisterRoutes(api, db, cfg)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": cfg.ServiceName})
	})

	utils.Zlog.Info("Starting server",
		zap.String("service", cfg.ServiceName),
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment))
	if err := router.Run(":" + cfg.Port); err != nil {
		utils.Zlog.Fatal("Server stopped", zap.Error(err))
	}
}
