package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/web-source-dev/questionare-server/internal/catalog"
	"github.com/web-source-dev/questionare-server/internal/config"
	"github.com/web-source-dev/questionare-server/internal/database"
	"github.com/web-source-dev/questionare-server/internal/handler"
	"github.com/web-source-dev/questionare-server/internal/middleware"
	"github.com/web-source-dev/questionare-server/internal/models"
	"github.com/web-source-dev/questionare-server/internal/render"
	"github.com/web-source-dev/questionare-server/internal/repository"
	"github.com/web-source-dev/questionare-server/internal/router"
	"github.com/web-source-dev/questionare-server/internal/service"
	cloud "github.com/web-source-dev/questionare-server/pkg/cloudinary"
	"github.com/web-source-dev/questionare-server/pkg/mailer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	questions, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("failed to load question catalog: %v", err)
	}
	logger.Info().Int("questions", questions.Len()).Str("path", cfg.CatalogPath).Msg("question catalog loaded")

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Submission{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer cache.Close()
	} else {
		logger.Warn().Msg("redis url not set, submission list cache disabled")
	}

	var events *nats.Conn
	if cfg.NATSURL != "" {
		events, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer events.Close()
	} else {
		logger.Warn().Msg("nats url not set, submission events disabled")
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	notifier, err := mailer.NewSMTP(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create mailer: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	submissionRepo := repository.NewSubmissionRepository(db)
	submissionService := service.NewSubmissionService(service.SubmissionServiceDeps{
		Repo:          submissionRepo,
		Catalog:       questions,
		Renderer:      render.New(questions),
		Uploader:      uploader,
		Notifier:      notifier,
		Cache:         cache,
		CacheTTL:      cfg.SubmissionsCacheTTL,
		Events:        events,
		EventSubject:  cfg.EventSubject,
		Validator:     validate,
		Logger:        logger,
		UploadTimeout: cfg.UploadTimeout,
		NotifyTimeout: cfg.NotifyTimeout,
	})
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		SubmissionHandler: submissionHandler,
		CatalogSize:       questions.Len(),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
