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

	"github.com/twistedwarden/esmv2-sub001/internal/config"
	"github.com/twistedwarden/esmv2-sub001/internal/database"
	"github.com/twistedwarden/esmv2-sub001/internal/handler"
	"github.com/twistedwarden/esmv2-sub001/internal/middleware"
	"github.com/twistedwarden/esmv2-sub001/internal/models"
	"github.com/twistedwarden/esmv2-sub001/internal/repository"
	"github.com/twistedwarden/esmv2-sub001/internal/router"
	"github.com/twistedwarden/esmv2-sub001/internal/service"
	"github.com/twistedwarden/esmv2-sub001/pkg/directory"
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

	if err := db.AutoMigrate(&models.InterviewSchedule{}, &models.InterviewEvaluation{}, &models.ActivityLog{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis and NATS fan outcome events out to other services; both are
	// optional and the feed degrades to in-process delivery without them.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NatsURL != "" {
		natsConn, err = database.ConnectNats(cfg.NatsURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	applicationDirectory, err := directory.NewApplicationClient(directory.Config{
		BaseURL: cfg.ApplicationDirectoryURL,
		APIKey:  cfg.ApplicationDirectoryKey,
		Timeout: cfg.DirectoryTimeout,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("failed to create application directory client: %v", err)
	}
	staffDirectory, err := directory.NewStaffClient(directory.Config{
		BaseURL: cfg.StaffDirectoryURL,
		APIKey:  cfg.ApplicationDirectoryKey,
		Timeout: cfg.DirectoryTimeout,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("failed to create staff directory client: %v", err)
	}

	scheduleRepo := repository.NewScheduleRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	outcomeService := service.NewOutcomeService(redisClient, natsConn, cfg.OutcomeChannel, logger)
	availabilityService := service.NewAvailabilityService(scheduleRepo, logger)
	slotService := service.NewSlotService(availabilityService, service.SlotWindow{
		WorkStart:   cfg.WorkdayStart,
		WorkEnd:     cfg.WorkdayEnd,
		Granularity: cfg.SlotGranularityMinutes,
	}, logger)
	scheduleService := service.NewScheduleService(scheduleRepo, availabilityService, applicationDirectory, activityService, outcomeService, validate, cfg.DefaultInterviewDuration, logger)
	evaluationService := service.NewEvaluationService(evaluationRepo, scheduleService, activityService, validate, logger)
	endorsementService := service.NewEndorsementService(applicationDirectory, scheduleRepo, evaluationRepo, activityService, outcomeService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ScheduleHandler:    handler.NewScheduleHandler(scheduleService, logger),
		EvaluationHandler:  handler.NewEvaluationHandler(evaluationService, logger),
		EndorsementHandler: handler.NewEndorsementHandler(endorsementService, logger),
		InterviewerHandler: handler.NewInterviewerHandler(staffDirectory, slotService, cfg.DefaultInterviewDuration, logger),
		ActivityHandler:    handler.NewActivityHandler(activityService, logger),
		OutcomeFeedHandler: handler.NewOutcomeFeedHandler(outcomeService, logger),
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
