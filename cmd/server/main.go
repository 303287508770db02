package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"miro-content-service/internal/auth"
	"miro-content-service/internal/config"
	"miro-content-service/internal/handler"
	"miro-content-service/internal/middleware"
	"miro-content-service/internal/model"
	"miro-content-service/internal/repository"
	"miro-content-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	// Load configuration
	cfg := config.Load()
	log.Info().
		Str("port", cfg.Port).
		Str("mode", cfg.GinMode).
		Str("env", cfg.Env).
		Msg("🚀 Starting miro-content-service")

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Initialize Redis-backed cache store
	store, err := repository.NewRedisStore(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer store.Close()
	cache := repository.NewTaggedCache(store, cfg.CacheTTL)

	// Metrics and user sessions share the cache store's Redis connection
	metrics := repository.NewMetrics(store.Client())
	metrics.RecordServerStart(context.Background())
	log.Info().Msg("📊 Metrics enabled")

	sessions := repository.NewSessionStore(store.Client(), cfg.SessionTTL)

	// Initialize Postgres catalog database
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := repository.NewDB(ctx, cfg.PostgresURL, cfg.DBMaxConns, cfg.DBAcquireTimeout)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}
	defer db.Close()
	log.Info().Msg("🗄️  Postgres connected")

	// Initialize the document store for projects and admin accounts
	docs, err := repository.NewDocStore(cfg.BoltPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open document store")
	}
	defer docs.Close()

	// Optional admin bootstrap for first-run setups
	if username := os.Getenv("ADMIN_USERNAME"); username != "" {
		admin := model.Admin{
			AdminID:  1,
			Username: username,
			Password: auth.HashAdminPassword(os.Getenv("ADMIN_PASSWORD")),
		}
		if err := docs.PutAdmin(admin); err != nil {
			log.Fatal().Err(err).Msg("Failed to bootstrap admin account")
		}
		log.Info().Str("username", username).Msg("🔐 Admin account bootstrapped")
	}

	// Initialize services
	catalogService := service.NewCatalogService(repository.NewCatalogRepo(db), cache)
	projectService := service.NewProjectService(docs, cache)
	mailer := service.NewMailer(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom, cfg.AppURL)
	if cfg.MailAPIKey != "" {
		log.Info().Msg("📧 Mail API enabled")
	}

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AdminTokenTTL)

	// Initialize handlers
	secure := cfg.IsProduction()
	moviesHandler := handler.NewMoviesHandler(catalogService)
	tvHandler := handler.NewTVHandler(catalogService)
	companiesHandler := handler.NewCompaniesHandler(catalogService)
	platformsHandler := handler.NewPlatformsHandler(catalogService)
	projectsHandler := handler.NewProjectsHandler(projectService)
	authHandler := handler.NewAuthHandler(docs, issuer, secure)
	usersHandler := handler.NewUsersHandler(repository.NewUserRepo(db), sessions, mailer, cfg.SessionTTL, secure)
	adminHandler := handler.NewAdminHandler(metrics)

	// Setup router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logging())
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.AuthGate())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// Public API routes
	api := r.Group("/api")
	{
		api.GET("/movies", moviesHandler.GetMovies)
		api.GET("/movies/:id", moviesHandler.GetMovieDetail)
		api.GET("/tv-series", tvHandler.GetTVSeries)
		api.GET("/tv-series/:id", tvHandler.GetTVSeriesDetail)
		api.GET("/production-companies", companiesHandler.GetTopCompanies)
		api.GET("/tv-production-companies", companiesHandler.GetTVTopCompanies)
		api.GET("/platforms", platformsHandler.GetPlatforms)
		api.GET("/tv-platforms", platformsHandler.GetTVPlatforms)

		api.GET("/projects", projectsHandler.ListProjects)
		api.GET("/projects/:id", projectsHandler.GetProject)

		api.POST("/auth/login", authHandler.Login)
		api.GET("/auth/check", authHandler.Check)
		api.POST("/auth/logout", authHandler.Logout)

		api.POST("/users/register", usersHandler.Register)
		api.POST("/users/login", usersHandler.Login)
		api.POST("/users/logout", usersHandler.Logout)
		api.GET("/users/me", usersHandler.Me)
		api.POST("/users/resend-verification", usersHandler.ResendVerification)
		api.POST("/users/check-verification", usersHandler.CheckVerification)
		api.GET("/verify-email", usersHandler.VerifyEmail)
	}

	// Admin routes require the admin JWT cookie
	admin := r.Group("/api")
	admin.Use(middleware.AdminAuth(issuer))
	{
		admin.POST("/projects", projectsHandler.CreateProject)
		admin.PUT("/projects/:id", projectsHandler.UpdateProject)
		admin.DELETE("/projects/:id", projectsHandler.DeleteProject)

		admin.POST("/movies", moviesHandler.RevalidateMovies)
		admin.POST("/tv-series", tvHandler.RevalidateTVSeries)
		admin.POST("/tv-series/:id", tvHandler.RevalidateTVSeriesDetail)
		admin.POST("/production-companies", companiesHandler.RevalidateCompanies)

		admin.GET("/admin/analytics", adminHandler.GetAnalytics)
		admin.GET("/admin/analytics/endpoint", adminHandler.GetEndpointStats)
		admin.DELETE("/admin/analytics", adminHandler.ResetAnalytics)
	}

	if cfg.JWTSecret == "your-secret-key" {
		log.Warn().Msg("⚠️  JWT_SECRET is unset, using development default")
	}

	// Create HTTP server with graceful shutdown support
	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("🌐 Server listening")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("🛑 Shutting down server...")

	// Give outstanding requests a deadline for completion
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("👋 Server exited")
}
