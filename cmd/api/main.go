package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/forkful/forkful-backend/config"
	"github.com/forkful/forkful-backend/internal/api"
	"github.com/forkful/forkful-backend/internal/database"
	"github.com/forkful/forkful-backend/internal/logger"
	"github.com/forkful/forkful-backend/internal/router"
	"github.com/forkful/forkful-backend/internal/server"
	"github.com/forkful/forkful-backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	db, err := database.New(cfg)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.RunMigrations(db); err != nil {
		zapLogger.Fatal("failed to run migrations", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		// Shelf caching and rate limiting degrade gracefully without Redis.
		zapLogger.Warn("redis unavailable, continuing without cache", zap.Error(err))
		redisClient = nil
	}

	var mediaStore service.MediaStore
	if s3Config, err := config.NewS3Config(context.Background(), cfg.S3Bucket); err != nil {
		// Image uploads degrade to unavailable without S3 credentials.
		zapLogger.Warn("s3 unavailable, image uploads disabled", zap.Error(err))
	} else {
		mediaStore = service.NewS3MediaStore(s3Config)
	}

	var notifier service.Notifier = service.NoopNotifier{}
	if cfg.SMTPHost != "" {
		notifier = service.NewEmailNotifier(service.EmailConfig{
			Host:       cfg.SMTPHost,
			Port:       cfg.SMTPPort,
			Username:   cfg.SMTPUsername,
			Password:   cfg.SMTPPassword,
			FromEmail:  cfg.EmailFrom,
			FromName:   cfg.EmailName,
			AdminEmail: cfg.AdminEmail,
		})
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)
	profileService := service.NewProfileService(db)
	recipeService := service.NewRecipeService(db, notifier, zapLogger)
	ratingService := service.NewRatingService(db, notifier, zapLogger)
	socialService := service.NewSocialService(db, notifier, zapLogger)
	commentService := service.NewCommentService(db, notifier, zapLogger)
	catalogService := service.NewCatalogService(db, redisClient, zapLogger)

	handlers := router.Handlers{
		Auth:    api.NewAuthHandler(authService),
		Recipe:  api.NewRecipeHandler(recipeService, ratingService, socialService, commentService, mediaStore),
		Catalog: api.NewCatalogHandler(catalogService),
		Profile: api.NewProfileHandler(profileService, recipeService, socialService),
	}

	engine := router.SetupRouter(handlers, authService, redisClient, nil)

	srv := server.New(engine, zapLogger)
	if err := srv.Start(cfg.ServerPort); err != nil {
		zapLogger.Fatal("server error", zap.Error(err))
	}
}
