package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pairlens/internal/cache"
	"pairlens/internal/config"
	"pairlens/internal/events"
	"pairlens/internal/repository"
	"pairlens/internal/service"
	"pairlens/internal/transport/rest"
	"pairlens/internal/transport/ws"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// @title Pairlens Report API
// @version 1.0
// @description Couples assessment report generation service
// @host localhost:8080
// @BasePath /v1
func main() {
	_ = godotenv.Load()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "pairlens",
	})

	ctx := context.Background()
	cfg := config.Load()

	// Load AI config and log model settings
	aiConfig := config.DefaultAIConfig()
	logger.Info("generation models",
		"personality", aiConfig.Models.Personality,
		"wellbeing", aiConfig.Models.Wellbeing,
		"communication", aiConfig.Models.Communication)
	if aiConfig.IsEnabled() {
		logger.Info("provider API key configured")
	} else {
		logger.Warn("provider API key not set, generation requests will fail")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", "err", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		logger.Fatal("failed to ping MongoDB", "err", err)
	}
	logger.Info("connected to MongoDB", "database", cfg.MongoDatabase)

	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Fatal("failed to ping Redis", "err", err)
	}
	logger.Info("connected to Redis", "addr", cfg.RedisAddr)

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	logger.Info("WebSocket hub started")

	// Initialize repositories and caches
	profileRepo := repository.NewProfileRepo(db)
	reportRepo := repository.NewReportRepo(db)
	reportCache := cache.NewReportCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService()
	provider := service.NewGeminiProvider(aiConfig, logger)

	prompts, err := service.NewPromptAssembler(cfg.TemplateDir)
	if err != nil {
		logger.Fatal("failed to load prompt templates", "err", err)
	}

	reportSvc := service.NewReportService(profileRepo, reportRepo, reportCache, provider, prompts, aiConfig.Models, logger)
	reportSvc.SetBroadcaster(wsHub)

	// Optional NATS lifecycle events
	if cfg.NATSURL != "" {
		publisher, err := events.Connect(cfg.NATSURL, logger)
		if err != nil {
			logger.Fatal("failed to connect to NATS", "err", err)
		}
		defer publisher.Close()
		reportSvc.SetEventPublisher(publisher)
		logger.Info("connected to NATS", "url", cfg.NATSURL)
	}

	// Create router with container
	container := &rest.Container{
		AuthService:   authSvc,
		ReportService: reportSvc,
		WSHub:         wsHub,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", "port", cfg.HTTPPort)
		logger.Info("endpoints",
			"login", "POST /v1/auth/login",
			"generate", "POST /v1/reports",
			"fetch", "GET /v1/reports/{partnershipId}",
			"progress", "WS /v1/ws/reports/{partnershipId}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen and serve", "err", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", "err", err)
	}

	logger.Info("server exited")
}
