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
	"github.com/rs/zerolog"

	"github.com/leaps-program/leaps-api/internal/config"
	"github.com/leaps-program/leaps-api/internal/database"
	"github.com/leaps-program/leaps-api/internal/handler"
	"github.com/leaps-program/leaps-api/internal/middleware"
	"github.com/leaps-program/leaps-api/internal/models"
	"github.com/leaps-program/leaps-api/internal/repository"
	"github.com/leaps-program/leaps-api/internal/router"
	"github.com/leaps-program/leaps-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Activity{},
		&models.Submission{},
		&models.PointsLedgerEntry{},
		&models.TagGrant{},
		&models.WebhookEvent{},
		&models.Badge{},
		&models.UserBadge{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSeed()

	activityRepo := repository.NewActivityRepository(db)
	if err := activityRepo.Seed(seedCtx, models.ActivityDefinitions()); err != nil {
		log.Fatalf("failed to seed activities: %v", err)
	}
	badgeRepo := repository.NewBadgeRepository(db)
	if err := badgeRepo.Seed(seedCtx, models.DefaultBadges()); err != nil {
		log.Fatalf("failed to seed badges: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, leaderboard cache disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, credit events disabled")
		} else {
			defer natsConn.Close()
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	payloadValidator, err := service.NewPayloadValidator()
	if err != nil {
		log.Fatalf("failed to compile payload schemas: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)
	txManager := repository.NewTxManager(db)

	guard := service.NewAdmissionGuard(submissionRepo, cfg.QuotaPeersCeiling, cfg.QuotaStudentsCeiling)
	badgeEvaluator := service.NewBadgeService(logger)
	publisher := service.NewNATSPublisher(natsConn, "", logger)

	submissionService := service.NewSubmissionService(userRepo, submissionRepo, guard, payloadValidator, validate, logger)
	reviewService := service.NewReviewService(txManager, validate, badgeEvaluator, publisher, logger)
	webhookService := service.NewWebhookService(userRepo, webhookEventRepo, txManager, badgeEvaluator, publisher, validate, logger)
	leaderboardService := service.NewLeaderboardService(ledgerRepo, userRepo, badgeRepo, redisClient, cfg.LeaderboardCacheTTL, logger)
	auditService := service.NewAuditService(auditRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ActivityHandler:    handler.NewActivityHandler(),
		SubmissionHandler:  handler.NewSubmissionHandler(submissionService, logger),
		ReviewHandler:      handler.NewReviewHandler(reviewService, logger),
		WebhookHandler:     handler.NewWebhookHandler(webhookService, logger),
		LeaderboardHandler: handler.NewLeaderboardHandler(leaderboardService, logger),
		AuditHandler:       handler.NewAuditHandler(auditService, logger),
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
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
