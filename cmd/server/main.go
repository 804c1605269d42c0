package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trouvetonartisan/backend/config"
	"github.com/trouvetonartisan/backend/internal/app/controller"
	"github.com/trouvetonartisan/backend/internal/app/repository"
	"github.com/trouvetonartisan/backend/internal/app/service"
	"github.com/trouvetonartisan/backend/internal/db"
	"github.com/trouvetonartisan/backend/internal/middleware"
	"github.com/trouvetonartisan/backend/internal/router"
	"github.com/trouvetonartisan/backend/internal/storage"
	"github.com/trouvetonartisan/backend/pkg/logger"
	"github.com/trouvetonartisan/backend/pkg/mailer"
	"github.com/trouvetonartisan/backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.IsDevelopment() {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting Trouve ton artisan API", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if cfg.Server.IsDevelopment() && cfg.API.DisableKeyAuth {
		logger.Warn("API key check disabled (development)", nil)
	}

	// Initialize database
	gdb, err := db.Open(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(gdb); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed base categories (optional)
	if err := db.Seed(gdb); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Rate limit counters: shared in Redis, or per process
	var rateLimitStore middleware.RateLimitStore = middleware.NewMemoryRateLimitStore()
	if cfg.RateLimit.UseRedis {
		client, err := redis.Connect(&cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, using in-memory rate limiting", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer client.Close()
			rateLimitStore = redis.NewWindowCounter(client, "ratelimit:")
		}
	}

	// Image storage
	var s3Storage *storage.S3Storage
	if cfg.Storage.S3Enabled() {
		s3Storage = storage.NewS3Storage(context.Background(), cfg.Storage)
		logger.Info("Serving images from S3", map[string]interface{}{
			"bucket": cfg.Storage.S3Bucket,
		})
	}
	localStorage := storage.NewLocalStorage(cfg.Storage.UploadsDir)

	// Initialize repositories
	artisanRepo := repository.NewArtisanRepository(gdb)
	categoryRepo := repository.NewCategoryRepository(gdb)

	// Initialize services
	artisanService := service.NewArtisanService(artisanRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	contactService := service.NewContactService(artisanService, mailer.New(cfg.SMTP))

	// Initialize controllers
	exposeDetails := cfg.Server.IsDevelopment()
	artisanController := controller.NewArtisanController(artisanService, exposeDetails)
	categoryController := controller.NewCategoryController(categoryService, exposeDetails)
	contactController := controller.NewContactController(contactService, exposeDetails)
	healthController := controller.NewHealthController()
	imageController := controller.NewImageController(localStorage, s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.API, cfg.Server)

	// Setup router
	r := router.NewRouter(
		artisanController,
		categoryController,
		contactController,
		healthController,
		imageController,
		authMiddleware,
		rateLimitStore,
		cfg,
	)
	engine := r.Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
