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

	"github.com/learnora/learnora-api/internal/config"
	"github.com/learnora/learnora-api/internal/database"
	"github.com/learnora/learnora-api/internal/handler"
	"github.com/learnora/learnora-api/internal/middleware"
	"github.com/learnora/learnora-api/internal/models"
	"github.com/learnora/learnora-api/internal/repository"
	"github.com/learnora/learnora-api/internal/router"
	"github.com/learnora/learnora-api/internal/service"
	"github.com/learnora/learnora-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStartup()

	db, err := database.ConnectPostgres(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Student{},
		&models.Course{},
		&models.Enrollment{},
		&models.SurveyProfile{},
		&models.LearningPath{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(startupCtx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, path events stay on redis only")
		} else {
			defer natsConn.Drain()
		}
	}

	generator := buildGenerator(cfg, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	courseRepo := repository.NewCourseRepository(db)
	surveyRepo := repository.NewSurveyProfileRepository(db)
	pathRepo := repository.NewLearningPathRepository(db)

	publisherCtx, stopPublisher := context.WithCancel(context.Background())
	defer stopPublisher()

	events := service.NewPathEventPublisher(redisClient, "learnora", natsConn, logger)
	events.Start(publisherCtx)

	surveyService := service.NewSurveyService(surveyRepo, validate, logger)
	pathService := service.NewLearningPathService(
		courseRepo,
		surveyRepo,
		pathRepo,
		generator,
		events,
		redisClient,
		cfg.PathCacheTTL,
		validate,
		logger,
	)

	surveyHandler := handler.NewSurveyHandler(surveyService, logger)
	pathHandler := handler.NewLearningPathHandler(pathService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.AllowOrigins,
	})

	router.Register(app, cfg, router.Dependencies{
		SurveyHandler:       surveyHandler,
		LearningPathHandler: pathHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
		GenerateLimiter:     middleware.RateLimit("generate", cfg.GenerateRateMax, cfg.GenerateRateWindow),
		DB:                  db,
		Redis:               redisClient,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// buildGenerator assembles the configured text generation stack. A nil
// return keeps the planner on deterministic fallbacks.
func buildGenerator(cfg config.Config, logger zerolog.Logger) ai.TextGenerator {
	if !cfg.AIEnabled() {
		logger.Warn().Msg("no text generation provider configured, narration uses fallbacks")
		return nil
	}

	var base ai.TextGenerator
	switch cfg.AIProvider {
	case "openai":
		generator, err := ai.NewOpenAIGenerator(ai.OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.AIModel,
			MaxTokens:   cfg.AIMaxTokens,
			Temperature: cfg.AITemperature,
			Logger:      logger,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("openai unavailable, narration uses fallbacks")
			return nil
		}
		base = generator
	case "anthropic":
		generator, err := ai.NewAnthropicGenerator(ai.AnthropicConfig{
			APIKey: cfg.AnthropicAPIKey,
			Model:  cfg.AIModel,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("anthropic unavailable, narration uses fallbacks")
			return nil
		}
		base = generator
	default:
		logger.Warn().Str("provider", cfg.AIProvider).Msg("unknown ai provider, narration uses fallbacks")
		return nil
	}

	return ai.NewResilientGenerator(base, ai.ResilienceConfig{
		MaxAttempts:      cfg.AIMaxAttempts,
		CallTimeout:      cfg.AICallTimeout,
		BreakerThreshold: uint32(cfg.AIBreakerThreshold),
		BreakerCooldown:  cfg.AIBreakerCooldown,
		Logger:           logger,
	})
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
