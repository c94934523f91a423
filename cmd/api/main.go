package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/auth"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/config"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/database"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/handlers"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/middleware"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/services"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/pkg/logger"
)

func main() {
	// 1. Load configuration
	configPath := "config.yaml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	// 2. Database connection
	db, err := database.Connect(&cfg.Database)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Core services
	llmService, err := services.NewLLMService(ctx, &cfg.LLM)
	if err != nil {
		slog.Error("failed to initialize LLM", "error", err)
		os.Exit(1)
	}
	if !llmService.Enabled() {
		slog.Warn("GEMINI_API_KEY not set, job extraction and email classification are disabled")
	}

	var provider auth.Provider
	if p := auth.NewGoogleProvider(&cfg.Google); p != nil {
		provider = p
	} else {
		slog.Warn("Google OAuth not configured, sign-in and Gmail are disabled")
	}

	repo := database.NewApplicationRepository(db)
	applicationService := services.NewApplicationService(repo)
	userService := services.NewUserService(db)
	profileService := services.NewProfileService(db)
	gmailService := services.NewGmailService(provider, userService, cfg.Gmail.MaxResults)
	matcherService := services.NewMatcherService(repo)

	// 4. Email watcher
	if provider != nil {
		emailService := services.NewEmailService(db, userService, applicationService, llmService, matcherService, gmailService, cfg.Gmail)
		emailService.StartWatcher(ctx)
	}

	// 5. Handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(cfg, provider, userService)
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	profileHandler := handlers.NewProfileHandler(profileService)
	gmailHandler := handlers.NewGmailHandler(gmailService)
	jobHandler := handlers.NewJobHandler(llmService)

	// 6. Router, middleware and CORS
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))
	r.Use(middleware.RateLimit(cfg.Server.RateLimit, time.Minute))

	// 7. Routes
	r.GET("/api/v1/health", healthHandler.HealthCheck)

	authRoutes := r.Group("/api/auth")
	{
		authRoutes.GET("/google", authHandler.GoogleLogin)
		authRoutes.GET("/google/callback", authHandler.GoogleCallback)
	}

	requireAuth := middleware.AuthMiddleware(&cfg.Auth)
	authRoutes.GET("/me", requireAuth, authHandler.GetCurrentUser)
	authRoutes.POST("/logout", requireAuth, authHandler.Logout)

	api := r.Group("/api/v1")
	api.Use(requireAuth)
	{
		api.GET("/applications", applicationHandler.List)
		api.GET("/applications/stats", applicationHandler.Stats)
		api.POST("/applications", applicationHandler.Create)
		api.GET("/applications/:id", applicationHandler.Get)
		api.PUT("/applications/:id", applicationHandler.Update)
		api.DELETE("/applications/:id", applicationHandler.Delete)
		api.PATCH("/applications/:id/status", applicationHandler.ChangeStatus)
		api.GET("/applications/:id/events", applicationHandler.Events)

		api.GET("/profile", profileHandler.Get)
		api.PUT("/profile", profileHandler.Save)

		api.GET("/gmail/messages", gmailHandler.ListMessages)

		api.POST("/jobs/extract", jobHandler.ParseJob)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server exited gracefully")
}
