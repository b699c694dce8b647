// @title NoteWise API
// @version 1.0
// @description Study assistant API: upload a PDF, then summarize it, quiz yourself, make flashcards and notes, and chat about it.
// @host localhost:8090
// @BasePath /api
// @schemes http https
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"notewise/internal/adapter"
	"notewise/internal/adapter/embedding"
	"notewise/internal/adapter/extractor"
	"notewise/internal/adapter/llm"
	"notewise/internal/cache"
	"notewise/internal/config"
	"notewise/internal/database"
	"notewise/internal/domain"
	"notewise/internal/handler"
	"notewise/internal/logger"
	"notewise/internal/middleware"
	"notewise/internal/repository"
	"notewise/internal/service"

	_ "notewise/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

const (
	defaultFlowResultTTL = 24 * time.Hour
	defaultEmbeddingTTL  = 7 * 24 * time.Hour
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	embeddingService, err := embedding.NewEmbeddingService(
		cfg.Embedding,
		cacheAdapter,
		cfg.ParseTTLStringOrDefault(cfg.CacheTTLs.Embedding, defaultEmbeddingTTL),
	)
	if err != nil {
		appLogger.Fatal("Failed to create embedding service", zap.Error(err))
	}
	if embeddingService == nil {
		appLogger.Info("Embeddings disabled, long documents are truncated instead of ranked")
	} else {
		appLogger.Info("Embedding service initialized", zap.String("source", cfg.Embedding.Source), zap.String("model", cfg.Embedding.Model))
	}

	llmClient, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create LLM client", zap.Error(err))
	}
	appLogger.Info("LLM client initialized", zap.String("provider", llmClient.Name()), zap.Bool("media", llmClient.SupportsMedia()))

	var attempts domain.QuizAttemptRepository
	if cfg.HistoryEnabled() {
		db, err := database.NewSQLXOracleDB(cfg.GetDSN())
		if err != nil {
			appLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		attempts = repository.NewSQLXQuizAttemptRepository(db)
	} else {
		appLogger.Info("No database configured, quiz attempt history is disabled")
		attempts = repository.NewNoopQuizAttemptRepository()
	}

	selector := service.NewContextSelector(embeddingService, cfg.LLM.MaxContextChars, cfg.Embedding.TopK)
	flowService := service.NewStudyFlowService(
		llmClient,
		extractor.NewPDFExtractor(),
		selector,
		cacheAdapter,
		cfg.ParseTTLStringOrDefault(cfg.CacheTTLs.FlowResult, defaultFlowResultTTL),
	)
	sessionStore := service.NewSessionStore(cacheAdapter, cfg.Session.TTL)
	sessionService := service.NewSessionService(flowService, sessionStore, attempts, service.NewExportService())

	flowHandler := handler.NewFlowHandler(flowService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	healthHandler := handler.NewHealthHandler(cacheAdapter, llmClient.Name())
	validator := middleware.NewValidationMiddleware()

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept",
		ExposeHeaders: "Content-Disposition,Retry-After",
		MaxAge:        300,
	}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)

	apiGroup := app.Group("/api")
	apiGroup.Get("/health", healthHandler.Health)
	flowHandler.RegisterRoutes(apiGroup)
	sessionHandler.RegisterRoutes(apiGroup, validator.ValidateSessionID(), validator.ValidateExportFormat())

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
