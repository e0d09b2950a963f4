package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/robfig/cron/v3"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/mundodosbots/backend/docs"
	"github.com/mundodosbots/backend/internal/auth"
	"github.com/mundodosbots/backend/internal/config"
	"github.com/mundodosbots/backend/internal/handlers"
	"github.com/mundodosbots/backend/internal/logger"
	"github.com/mundodosbots/backend/internal/mailer"
	"github.com/mundodosbots/backend/internal/middlewares"
	"github.com/mundodosbots/backend/internal/models"
	"github.com/mundodosbots/backend/internal/pabbly"
	"github.com/mundodosbots/backend/internal/repositories"
	"github.com/mundodosbots/backend/internal/services"
)

// @title Mundo dos Bots API
// @version 1.0
// @description API for the Mundo dos Bots marketing site: authentication, blog, solutions and social auto-posting

// @contact.name API Support
// @contact.email contato@mundodosbots.com.br

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
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

	logger.Logger.Info("Starting Mundo dos Bots backend")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize JWT token manager
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TokenExpiry)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	resetTokenRepo := repositories.NewResetTokenRepository(db)
	postRepo := repositories.NewPostRepository(db)
	solutionRepo := repositories.NewSolutionRepository(db)
	socialPostRepo := repositories.NewSocialPostRepository(db)

	// Initialize outbound clients
	resetMailer := mailer.New(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	pabblyClient := pabbly.NewClient(cfg.Pabbly.WebhookURL, cfg.Pabbly.Timeout)

	if cfg.Reset.ExposeToken {
		logger.Logger.Warn("AUTH_EXPOSE_RESET_TOKEN is enabled; reset tokens are returned in API responses (development only)")
	}

	// Initialize services
	authService := services.NewAuthService(
		userRepo, resetTokenRepo, tokenManager, resetMailer, logger.Logger,
		cfg.Reset.TokenTTL, cfg.SiteBaseURL, cfg.Reset.ExposeToken,
	)
	postService := services.NewPostService(postRepo)
	solutionService := services.NewSolutionService(solutionRepo)
	adminService := services.NewAdminService(userRepo)
	socialService := services.NewSocialService(socialPostRepo, pabblyClient, logger.Logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger.Logger)
	postHandler := handlers.NewPostHandler(postService, logger.Logger)
	solutionHandler := handlers.NewSolutionHandler(solutionService, logger.Logger)
	adminHandler := handlers.NewAdminHandler(adminService, logger.Logger)
	socialHandler := handlers.NewSocialHandler(socialService, logger.Logger)

	// Initialize auth middleware
	authMiddleware := auth.Middleware(tokenManager)
	adminMiddleware := auth.RequireRole(tokenManager, string(models.RoleAdmin))

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(middlewares.LoggerMiddleware(logger.Logger))
	r.Use(middlewares.RecoveryMiddleware(logger.Logger))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middlewares.RequestSizeLimitMiddleware(2 * 1024 * 1024)) // 2MB

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Scope router to /api
	r.Route("/api", func(r chi.Router) {
		// Stricter limit on credential endpoints
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(10, time.Minute))
			authHandler.RegisterRoutes(r, authMiddleware)
		})

		postHandler.RegisterRoutes(r, authMiddleware)
		solutionHandler.RegisterRoutes(r, adminMiddleware)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			socialHandler.RegisterRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			adminHandler.RegisterRoutes(r)
		})
	})

	// Background jobs: social auto-posting sweep and reset token cleanup.
	// Fire and forget; a missed run is picked up by the next one.
	c := cron.New()
	c.AddFunc("* * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
		defer cancel()
		socialService.ProcessDue(ctx)
	})
	c.AddFunc("0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		deleted, err := resetTokenRepo.DeleteExpired(ctx, time.Now())
		if err != nil {
			logger.Logger.Error("failed to delete expired reset tokens", zap.Error(err))
			return
		}
		if deleted > 0 {
			logger.Logger.Info("deleted expired reset tokens", zap.Int("count", deleted))
		}
	})
	c.Start()
	defer c.Stop()

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Get the working directory or use migrations folder relative to the binary
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
