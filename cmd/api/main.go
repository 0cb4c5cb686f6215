package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/quiz-api/internal/app"
	"github.com/yourusername/quiz-api/internal/config"
	"github.com/yourusername/quiz-api/internal/service"
	"github.com/yourusername/quiz-api/pkg/database"
	"github.com/yourusername/quiz-api/pkg/logger"
)

func main() {
	// .env необязателен
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.WithField("path", configPath).Info("Configuration loaded")

	// Сервер не стартует с неполной конфигурацией
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled() {
		redisClient, err = database.NewUniversalRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to Redis")
		}
		log.Info("Successfully connected to Redis")
	} else {
		log.Warn("Redis is not configured: quiz cache and submit rate limiting are disabled")
	}

	application, err := app.New(cfg, app.Deps{DB: db, Redis: redisClient, Logger: log})
	if err != nil {
		log.WithError(err).Fatal("Failed to assemble application")
	}

	if cfg.Database.AutoMigrate {
		if err := application.Migrator.Up(); err != nil {
			log.WithError(err).Fatal("Failed to migrate database")
		}
	}

	statsJob := service.NewStatsJob(
		application.Stats,
		application.Metrics,
		time.Duration(cfg.Metrics.StatsIntervalSec)*time.Second,
		log,
	)
	if cfg.Metrics.Enabled {
		if err := statsJob.Start(); err != nil {
			log.WithError(err).Error("Failed to start stats job")
		}
	}

	if application.Hub != nil {
		if err := application.Hub.StartCluster(ctx); err != nil {
			log.WithError(err).Warn("Live feed cluster relay is not running")
		}
	}

	// Тайм-ауты защищают от медленных клиентов
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      application.Engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	cancel()
	statsJob.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	application.Close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.WithError(err).Warn("Error closing Redis client")
		}
	}
	if sqlDB, err := database.GetSQLDB(db); err == nil {
		sqlDB.Close()
	}

	log.Info("Server exited properly")
}
