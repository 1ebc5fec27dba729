package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/luct-report-api/internal/config"
	"github.com/noah-isme/luct-report-api/internal/database"
	"github.com/noah-isme/luct-report-api/internal/handler"
	"github.com/noah-isme/luct-report-api/internal/middleware"
	"github.com/noah-isme/luct-report-api/internal/repository"
	"github.com/noah-isme/luct-report-api/internal/router"
	"github.com/noah-isme/luct-report-api/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "luct-report-api").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL, database.Pool(cfg.DatabasePool))
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}
	if natsConn != nil {
		defer natsConn.Drain()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	reportRepo := repository.NewReportRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)

	auditService := service.NewAuditService(auditRepo, validate, service.AuditFanout{
		Redis:   redisClient,
		NATS:    natsConn,
		Channel: cfg.EventsChannel,
	}, cfg.AuditBatchSize, logger)
	reportService := service.NewReportService(reportRepo, directoryRepo, validate, auditService, logger)
	ratingService := service.NewRatingService(ratingRepo, validate, auditService, logger)
	dashboardService := service.NewDashboardService(reportRepo, ratingRepo, directoryRepo, auditService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AccessLog:    !cfg.IsProduction(),
		AllowOrigins: cfg.CORSOrigins,
	})
	router.Register(app, cfg, router.Dependencies{
		Logger:           logger,
		DB:               db,
		ReportHandler:    handler.NewReportHandler(reportService, dashboardService, logger),
		RatingHandler:    handler.NewRatingHandler(ratingService, dashboardService, logger),
		DashboardHandler: handler.NewDashboardHandler(dashboardService, logger),
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
		RatingLimiter:    middleware.RateLimit("ratings", cfg.RatingRateLimit, cfg.RatingWindow),
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Str("env", cfg.AppEnv).Msg("http server starting")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
