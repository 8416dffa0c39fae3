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

	"github.com/kcastreetfood/reservation-backend/config"
	"github.com/kcastreetfood/reservation-backend/internal/app/controller"
	"github.com/kcastreetfood/reservation-backend/internal/app/repository"
	"github.com/kcastreetfood/reservation-backend/internal/app/service"
	"github.com/kcastreetfood/reservation-backend/internal/db"
	"github.com/kcastreetfood/reservation-backend/internal/middleware"
	"github.com/kcastreetfood/reservation-backend/internal/router"
	"github.com/kcastreetfood/reservation-backend/internal/scheduler"
	"github.com/kcastreetfood/reservation-backend/internal/storage"
	"github.com/kcastreetfood/reservation-backend/pkg/logger"
	"github.com/kcastreetfood/reservation-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logCfg := logger.ConfigFor(cfg.Server.Environment)
	logger.Initialize(logCfg)

	logger.Info("Starting reservation backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logCfg.Level,
	})

	// Initialize database
	database, err := db.Initialize(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(database); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations and seed defaults
	if err := db.Migrate(database); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis is optional; without it logout cannot revoke tokens
	var blacklist *redis.Client
	if cfg.Redis.Enabled {
		blacklist, err = redis.New(&cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
				"error": err.Error(),
			})
			blacklist = nil
		} else {
			defer blacklist.Close()
		}
	}

	// S3 is optional; without it image uploads answer 503
	var uploader controller.ImageUploader
	if cfg.S3.Bucket != "" {
		s3Storage, err := storage.NewS3Storage(context.Background(), &cfg.S3)
		if err != nil {
			logger.Warn("S3 storage unavailable, image uploads disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			uploader = s3Storage
		}
	}

	loc := cfg.Booking.Location()
	policy, err := service.NewBookingPolicy(cfg.Booking.MaxPartySize, cfg.Booking.TimeSlots, loc)
	if err != nil {
		logger.Fatal("Invalid booking policy", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(database)
	restaurantRepo := repository.NewRestaurantRepository(database)
	tableRepo := repository.NewTableRepository(database)
	reservationRepo := repository.NewReservationRepository(database)

	// Initialize services
	var revoker service.TokenRevoker
	var tokenBlacklist middleware.TokenBlacklist
	if blacklist != nil {
		revoker = blacklist
		tokenBlacklist = blacklist
	}
	authService := service.NewAuthService(
		userRepo,
		revoker,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	reservationService := service.NewReservationService(database, restaurantRepo, tableRepo, reservationRepo, policy)
	tableService := service.NewTableService(database, restaurantRepo, tableRepo, reservationRepo, loc)
	restaurantService := service.NewRestaurantService(restaurantRepo)
	userService := service.NewUserService(userRepo)
	exportService := service.NewExportService(reservationRepo)

	// Initialize controllers
	authController := controller.NewAuthController(authService, !cfg.Server.IsProduction())
	restaurantController := controller.NewRestaurantController(restaurantService, tableService)
	tableController := controller.NewTableController(tableService, reservationService)
	reservationController := controller.NewReservationController(reservationService)
	adminController := controller.NewAdminController(reservationService, exportService, userService)
	uploadController := controller.NewUploadController(uploader, restaurantService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, tokenBlacklist)

	// Setup router
	r := router.NewRouter(
		authController,
		restaurantController,
		tableController,
		reservationController,
		adminController,
		uploadController,
		authMiddleware,
		database,
		cfg,
	)
	engine := r.Setup()

	completion := scheduler.NewCompletionScheduler(reservationService, cfg.Booking.CompletionCron, loc)
	if err := completion.Start(); err != nil {
		logger.Fatal("Failed to start reservation completion scheduler", err)
	}
	defer completion.Stop()

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
