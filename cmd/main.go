package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/churchsite/backend/internal/auth"
	"github.com/churchsite/backend/internal/config"
	"github.com/churchsite/backend/internal/database"
	"github.com/churchsite/backend/internal/handlers"
	"github.com/churchsite/backend/internal/logger"
	"github.com/churchsite/backend/internal/metrics"
	"github.com/churchsite/backend/internal/repositories"
	"github.com/churchsite/backend/internal/security"
	"github.com/churchsite/backend/internal/services"
	"github.com/churchsite/backend/internal/upload"
	"github.com/churchsite/backend/internal/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// multipart framing and text fields on top of the largest accepted file
const requestSizeMargin = 1 << 20

const loginAttemptsPerMinute = 10

// @title Church Site API
// @version 1.0
// @description Content API for blogs, events, sermons and image uploads
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting church site backend")

	// Connect to database
	db, err := database.Connect(cfg.DSN(), logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	sqlDB, err := db.SQL()
	if err != nil {
		logger.Logger.Fatal("Failed to get database pool", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, "migrations"); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// Upload pipeline
	storage, err := upload.NewStorage(cfg.Uploads.Root)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize upload storage", zap.Error(err))
	}
	pipeline, err := upload.NewPipeline(storage, upload.Config{
		AllowedTypes: cfg.Uploads.AllowedTypes,
		MaxSize:      cfg.Uploads.MaxSize,
		MaxWidth:     cfg.Image.MaxWidth,
		MaxHeight:    cfg.Image.MaxHeight,
		Quality:      cfg.Image.Quality,
		Format:       cfg.Image.Format,
	}, cfg.Uploads.TempDir, logger.Logger, collector)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize upload pipeline", zap.Error(err))
	}

	// Abandoned upload cleanup
	if cfg.Uploads.SweepSchedule != "off" {
		sweeper := upload.NewSweeper(storage, cfg.Uploads.TempDir, cfg.Uploads.SweepMaxAge, logger.Logger)
		if err := sweeper.Start(cfg.Uploads.SweepSchedule); err != nil {
			logger.Logger.Fatal("Failed to start upload sweeper", zap.Error(err))
		}
		defer sweeper.Stop()
	}

	tokenGenerator := auth.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	sanitizer := security.NewContentSanitizer()

	// Initialize repositories
	blogRepo := repositories.NewBlogRepository(db, logger.Logger)
	eventRepo := repositories.NewEventRepository(db, logger.Logger)
	sermonRepo := repositories.NewSermonRepository(db, logger.Logger)
	ministryRepo := repositories.NewMinistryRepository(db, logger.Logger)
	pastorRepo := repositories.NewPastorRepository(db, logger.Logger)
	pageRepo := repositories.NewPageRepository(db, logger.Logger)
	userRepo := repositories.NewUserRepository(db, logger.Logger)

	// Initialize services
	blogService := services.NewBlogService(blogRepo, sanitizer, storage, logger.Logger)
	eventService := services.NewEventService(eventRepo, sanitizer, storage, logger.Logger)
	sermonService := services.NewSermonService(sermonRepo, sanitizer, storage, logger.Logger)
	ministryService := services.NewMinistryService(ministryRepo, sanitizer, storage, logger.Logger)
	pastorService := services.NewPastorService(pastorRepo, sanitizer, storage, logger.Logger)
	pageService := services.NewPageService(pageRepo, sanitizer, storage, logger.Logger)
	authService := services.NewAuthService(userRepo, tokenGenerator, logger.Logger)
	uploadService := services.NewUploadService(storage, logger.Logger)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.SeedAdmin(seedCtx, cfg.Admin); err != nil {
		logger.Logger.Fatal("Failed to seed admin account", zap.Error(err))
	}
	cancelSeed()

	// Initialize handlers
	guards := handlers.NewGuards(tokenGenerator, validation.New(), pipeline, collector, logger.Logger)

	router := handlers.NewRouter(handlers.RouterConfig{
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		MaxRequestSize:     pipeline.Config().MaxSize + requestSizeMargin,
		UploadsRoot:        storage.Root(),
		Recorder:           collector,
		Gatherer:           registry,
		Logger:             logger.Logger,
	},
		handlers.NewHealthHandler(db, logger.Logger),
		handlers.NewAuthHandler(authService, guards, handlers.LoginLimiter(loginAttemptsPerMinute)),
		handlers.NewBlogHandler(blogService, guards),
		handlers.NewEventHandler(eventService, guards),
		handlers.NewSermonHandler(sermonService, guards),
		handlers.NewMinistryHandler(ministryService, guards),
		handlers.NewPastorHandler(pastorService, guards),
		handlers.NewPageHandler(pageService, guards),
		handlers.NewUploadHandler(uploadService, guards),
	)

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second, // Longer timeout for file uploads
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}
