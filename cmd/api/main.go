package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"alfredoptarigan/career-coach/internal/auth"
	"alfredoptarigan/career-coach/internal/config"
	"alfredoptarigan/career-coach/internal/handlers"
	"alfredoptarigan/career-coach/internal/logger"
	"alfredoptarigan/career-coach/internal/repositories"
	"alfredoptarigan/career-coach/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "error", err)
	}
	log.Info("config loaded", "env", cfg.Server.Env)

	// Initialize database
	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize database", "error", err)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	docRepo := repositories.NewDocumentRepository(db)
	interviewRepo := repositories.NewInterviewRepository(db)

	metrics := services.NewMetrics(prometheus.DefaultRegisterer)

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model, metrics)
	if err != nil {
		log.Fatal("failed to initialize Gemini AI", "error", err)
	}
	log.Info("gemini initialized", "model", cfg.Gemini.Model)

	// Initialize scoring worker
	scorer := services.NewDocumentScorer(docRepo, geminiService)
	worker := services.NewScoringWorker(
		scorer,
		log,
		metrics,
		cfg.Scoring.Workers,
		cfg.Scoring.QueueSize,
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	// Initialize services
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := services.NewAuthService(userRepo, tokens, log)
	documentService := services.NewDocumentService(docRepo, worker, log)
	interviewService := services.NewInterviewService(interviewRepo, geminiService, log)

	var (
		googleService services.GoogleOAuthService
		stateStore    services.OAuthStateStore
	)
	if cfg.GoogleEnabled() {
		redisClient, err := services.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			log.Fatal("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()

		stateStore = services.NewRedisStateStore(redisClient, cfg.Google.StateTTL)
		googleService = services.NewGoogleOAuthService(
			cfg.Google.ClientID,
			cfg.Google.ClientSecret,
			cfg.GoogleRedirectURL(),
		)
		log.Info("google login enabled", "redirect_url", cfg.GoogleRedirectURL())
	} else {
		log.Warn("google login disabled: GOOGLE_AUTH_CLIENT_ID, GOOGLE_AUTH_SECRET and REDIS_URL are required")
	}

	// Initialize handlers
	h := handlers.Handlers{
		Auth:      handlers.NewAuthHandler(authService, googleService, stateStore, log),
		Documents: handlers.NewDocumentHandler(documentService),
		Interview: handlers.NewInterviewHandler(interviewService),
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Career Coach API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		ErrorHandler: handlers.ErrorHandler(log),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Routes
	handlers.RegisterRoutes(app.Group("/api"), h, authService)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", "error", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", "addr", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", "error", err)
	}
}
