package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursecritic-backend/internal/auth"
	"coursecritic-backend/internal/config"
	"coursecritic-backend/internal/database"
	"coursecritic-backend/internal/handlers"
	"coursecritic-backend/internal/logger"
	"coursecritic-backend/internal/notify"
	"coursecritic-backend/internal/ratelimit"
	"coursecritic-backend/internal/repository"
	"coursecritic-backend/internal/service"

	"github.com/rs/zerolog/log"
)

const (
	loginAttempts = 5
	loginWindow   = 15 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("development")
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(cfg.Env)

	// Connect to MongoDB
	if err := database.Connect(cfg.Mongo.URI, cfg.Mongo.DBName); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepo()
	courseRepo := repository.NewCourseRepo()
	facultyRepo := repository.NewFacultyRepo()
	reviewRepo := repository.NewReviewRepo()
	facultyReviewRepo := repository.NewFacultyReviewRepo()
	revokedRepo := repository.NewRevokedTokenRepo()

	// Ensure indexes
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	for name, ensure := range map[string]func(context.Context) error{
		"users":          userRepo.EnsureIndexes,
		"courses":        courseRepo.EnsureIndexes,
		"faculties":      facultyRepo.EnsureIndexes,
		"reviews":        reviewRepo.EnsureIndexes,
		"facultyreviews": facultyReviewRepo.EnsureIndexes,
		"revoked_tokens": revokedRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Warn().Err(err).Str("collection", name).Msg("failed to create indexes")
		}
	}
	cancel()

	// Login limiter: Redis when configured, in-process otherwise
	var limiterStore ratelimit.Store
	if cfg.Redis.Addr != "" {
		redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := ratelimit.NewRedisClient(redisCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		redisCancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, login limits are per instance")
		} else {
			defer client.Close()
			limiterStore = ratelimit.NewRedisStore(client)
		}
	}
	limiter := ratelimit.New(limiterStore, loginAttempts, loginWindow)

	notifier := notify.New(cfg.Resend.APIKey, cfg.Resend.FromEmail, cfg.Resend.ModerationEmail)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)

	// Initialize services
	reviewSvc := service.NewReviewService(reviewRepo, userRepo, courseRepo, facultyRepo, notifier)
	facultyReviewSvc := service.NewFacultyReviewService(facultyReviewRepo, userRepo, facultyRepo, notifier)

	router := handlers.NewRouter(handlers.RouterConfig{
		Tokens:         tokens,
		Accounts:       service.NewAccountService(userRepo, revokedRepo, reviewRepo, facultyReviewRepo, tokens, limiter),
		Reviews:        reviewSvc,
		FacultyReviews: facultyReviewSvc,
		Admin:          service.NewAdminService(userRepo, reviewRepo, facultyReviewRepo, reviewSvc, facultyReviewSvc),
		Catalog:        service.NewCatalogService(courseRepo, facultyRepo, reviewSvc, facultyReviewSvc),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Ping:           database.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("coursecritic backend starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := database.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to disconnect from MongoDB")
	}
}
