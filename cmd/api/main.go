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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/algotrack/backend/internal/data"
	"github.com/algotrack/backend/internal/handler"
	"github.com/algotrack/backend/internal/infrastructure"
	"github.com/algotrack/backend/internal/middleware"
	"github.com/algotrack/backend/internal/platform"
	"github.com/algotrack/backend/internal/repository"
	"github.com/algotrack/backend/internal/service"
)

func main() {
	// Load configuration
	config := infrastructure.LoadConfig()

	// Initialize logger
	logger, err := infrastructure.NewLogger(config.Server.Environment, config.Server.LogLevel)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer infrastructure.SyncLogger(logger)

	logger.Info("Starting AlgoTrack API",
		zap.String("environment", config.Server.Environment),
		zap.Int("port", config.Server.Port),
	)

	// Initialize context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize telemetry
	telemetry, err := infrastructure.NewTelemetry(ctx, &config.Telemetry, config.Server.Environment, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()

	// Create metrics
	metrics, err := telemetry.CreateMetrics()
	if err != nil {
		logger.Error("Failed to create metrics", zap.Error(err))
		os.Exit(1)
	}

	// Initialize database
	database, err := infrastructure.NewDatabase(&config.Database, logger)
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer database.Close()

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(database.DB)
	linkRepo := repository.NewLinkedPlatformRepository(database.DB)
	courseRepo := repository.NewCourseRepository(database.DB)
	progressRepo := repository.NewProgressRepository(database.DB)

	// Seed the course catalog
	seeder := data.NewSeeder(courseRepo, logger)
	if err := seeder.SeedCourses(ctx); err != nil {
		logger.Error("Failed to seed courses", zap.Error(err))
		os.Exit(1)
	}

	// Platform adapters share one client; each call carries its own deadline
	adapters := platform.NewAdapters(config.Platforms, &http.Client{}, logger)

	// Initialize services
	limits := service.NewPlanLimits(config.Plans)
	admins := service.NewStaticAdminPolicy(config.Admin.Emails)

	platformService := service.NewPlatformService(adapters, telemetry.Tracer, metrics, logger)
	linkService := service.NewLinkService(userRepo, linkRepo, platformService, limits, admins, telemetry.Tracer, metrics, logger)
	userService := service.NewUserService(userRepo, linkRepo, courseRepo, progressRepo, limits, admins, telemetry.Tracer, logger)
	courseService := service.NewCourseService(userRepo, courseRepo, progressRepo, telemetry.Tracer, logger)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService, logger)
	platformHandler := handler.NewPlatformHandler(platformService, linkService, logger)
	courseHandler := handler.NewCourseHandler(courseService, logger)

	// Setup Gin router
	if config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add global middleware
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORSMiddleware(middleware.NewCORSConfig(config.CORS)))
	router.Use(middleware.TracingMiddleware(telemetry.Tracer))
	router.Use(middleware.MetricsMiddleware(metrics, config.Telemetry.MetricsEndpoint, "/health"))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": config.Telemetry.ServiceVersion,
		})
	})

	// Metrics endpoint for Prometheus
	router.GET(config.Telemetry.MetricsEndpoint, gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api")
	{
		// Public catalog of supported platforms
		api.GET("/platforms", platformHandler.GetSupported)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(middleware.NewJWTVerifier(config.Auth)))
		{
			// User routes
			users := protected.Group("/users")
			{
				users.GET("/me", userHandler.GetCurrentUser)
				users.GET("/me/dashboard", userHandler.GetDashboard)
			}

			// Platform routes
			platforms := protected.Group("/platforms")
			{
				platforms.GET("/linked", platformHandler.GetLinked)
				platforms.GET("/logs", platformHandler.GetLogs)
				platforms.POST("/link", platformHandler.Link)
				platforms.POST("/sync", platformHandler.SyncAll)
				platforms.POST("/:platform/sync", platformHandler.Sync)
				platforms.DELETE("/:platform", platformHandler.Unlink)
			}

			// Course routes
			courses := protected.Group("/courses")
			{
				courses.GET("", courseHandler.GetCourses)
				courses.GET("/:slug", courseHandler.GetCourse)
			}

			// Question routes
			questions := protected.Group("/questions")
			{
				questions.GET("/bookmarks", courseHandler.GetBookmarks)
				questions.PATCH("/:id/progress", courseHandler.UpdateProgress)
			}

			// Admin routes, checked against ADMIN_EMAILS in the service
			admin := protected.Group("/admin")
			{
				admin.PATCH("/users/:id/plan", userHandler.SetPlan)
			}
		}
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("HTTP server starting",
			zap.String("address", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
