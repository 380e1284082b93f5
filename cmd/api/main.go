package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/meeting-actions/pkg/validator"

	"github.com/johnquangdev/meeting-actions/internal/adapter/handler"
	"github.com/johnquangdev/meeting-actions/internal/adapter/repository"
	"github.com/johnquangdev/meeting-actions/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-actions/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-actions/internal/infrastructure/email"
	"github.com/johnquangdev/meeting-actions/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-actions/internal/usecase/assistant"
	"github.com/johnquangdev/meeting-actions/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-actions/internal/usecase/progress"
	pkgai "github.com/johnquangdev/meeting-actions/pkg/ai"
	"github.com/johnquangdev/meeting-actions/pkg/config"
	"github.com/johnquangdev/meeting-actions/pkg/jwt"
)

// @title           Meeting Actions API
// @version         1.0
// @description     API for the meeting action-item pipeline: transcript intake, task extraction, recommendations, and chat-driven edits

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Set-Cookie", "Cookie"},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	if err := database.ApplyMigrations(db, cfg.Database.MigrationsDir, logger); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	// Initialize Redis
	log.Println("📦 Connecting to Redis...")
	redisClient, err := cache.NewRedisClient(cfg.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize object storage
	log.Println("🗄️  Initializing object storage...")
	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO: %v", err)
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	meetingRepo := repository.NewMeetingRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	taskRepo := repository.NewTaskRepository(db, redisClient)
	recRepo := repository.NewRecommendationRepository(db)

	// Initialize AI components
	log.Println("🤖 Initializing AI components...")
	llmClient := pkgai.NewLLMClient(&cfg.OpenAI)
	transcriber := pkgai.NewTranscriber(&cfg.Assembly)
	sender := email.NewSender(&cfg.Email, logger)

	// Initialize pipeline usecases
	log.Println("🛠️  Initializing pipeline...")
	extractor := pipeline.NewExtractor(meetingRepo, participantRepo, taskRepo, llmClient, logger)
	engine := pipeline.NewEngine(meetingRepo, taskRepo, recRepo, llmClient, logger)
	scanner := pipeline.NewScanner(taskRepo, participantRepo, engine, cfg.Scanner.SweepEvery, cfg.Scanner.SweepTimeout, logger)
	pipelineService := pipeline.NewService(meetingRepo, extractor, engine, llmClient, logger)
	tracker := progress.NewTracker(meetingRepo, taskRepo, recRepo, 0, 0, logger)
	pendingCounter := progress.NewPendingCounter(redisClient, taskRepo, logger)
	coordinator := assistant.NewCoordinator(meetingRepo, taskRepo, recRepo, llmClient, logger)

	if cfg.Scanner.Enabled {
		scanner.Start()
		defer scanner.Stop()
	} else {
		log.Println("⚠️  Retry scanner disabled by configuration")
	}

	// Initialize JWT manager
	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry)

	// Initialize handlers
	log.Println("🛣️  Setting up routes...")
	pipelineController := handler.NewPipelineController(
		meetingRepo, taskRepo, recRepo,
		extractor, engine, scanner, tracker, pendingCounter,
		minioClient, transcriber, sender, logger,
	)
	assistantController := handler.NewAssistantController(coordinator, logger)
	webhookHandler := handler.NewTranscriptWebhookHandler(meetingRepo, transcriber, pipelineService, cfg.Assembly.WebhookSecret, logger)

	router := handler.NewRouter(cfg, jwtManager, pipelineController, assistantController, webhookHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
