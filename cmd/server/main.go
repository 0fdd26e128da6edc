package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slidegen-backend/internal/config"
	"slidegen-backend/internal/database"
	"slidegen-backend/internal/deck"
	"slidegen-backend/internal/handlers"
	"slidegen-backend/internal/middleware"
	"slidegen-backend/internal/pkg/logger"
	"slidegen-backend/internal/repository"
	"slidegen-backend/internal/router"
	"slidegen-backend/internal/services"
	"slidegen-backend/internal/storage"
	"slidegen-backend/internal/websocket"
	"slidegen-backend/internal/worker"
)

func main() {
	// ──── Step 1: Load Configuration ────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.RequireServer(); err != nil {
		log.Fatal("Configuration incomplete", "error", err)
	}
	log.Info("Starting slide generator backend", "env", cfg.Env, "port", cfg.Port)

	ctx := context.Background()

	// ──── Step 2: PostgreSQL ────
	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("PostgreSQL connection failed", "error", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, log); err != nil {
		log.Fatal("Database migration failed", "error", err)
	}
	log.Info("PostgreSQL ready")

	// ──── Step 3: Redis ────
	redisClients, err := database.NewRedisClients(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal("Redis connection failed", "error", err)
	}
	defer redisClients.Close()
	log.Info("Redis connected")

	// ──── Step 4: Object Storage ────
	store, err := storage.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Storage initialization failed", "error", err)
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}
	log.Info("Storage ready", "type", cfg.StorageType)

	// ──── Step 5: Gemini + Unsplash ────
	geminiService, err := services.NewGeminiService(ctx, cfg, log)
	if err != nil {
		log.Fatal("Gemini client initialization failed", "error", err)
	}
	defer geminiService.Close()

	var images services.ImageFetcher
	if cfg.UnsplashAccessKey != "" {
		images = services.NewUnsplashClient(cfg, geminiService, log)
	} else {
		log.Warn("UNSPLASH_ACCESS_KEY not set, decks will have no pictures")
	}

	themes, err := deck.NewThemeSelector(cfg.Theme, nil)
	if err != nil {
		log.Fatal("Theme configuration invalid", "error", err)
	}

	// ──── Repositories & Services ────
	userRepo := repository.NewUserRepo(pool)
	presentationRepo := repository.NewPresentationRepo(pool)
	jobRepo := repository.NewJobRepo(pool)

	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo, services.NewRedisTokenStore(redisClients.Queue), jwtAuth)
	pipeline := services.NewDeckPipeline(cfg, geminiService, images, themes, log)
	presentationService := services.NewPresentationService(cfg, pipeline, store, presentationRepo, jobRepo, redisClients.Queue, log)
	publisher := services.NewPublisher(redisClients.PubSub, log)

	// ──── Step 6: Worker Pool ────
	workerPool := worker.NewPool(redisClients.Queue, presentationService, jobRepo, publisher, cfg.WorkerCount, log)
	workerPool.Start()

	// ──── Step 7: WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, jwtAuth, cfg.FrontendURL, log)
	defer wsHub.Close()

	// ──── Step 8: HTTP Server ────
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer authLimiter.Stop()

	opts := router.Options{
		JWTAuth:             jwtAuth,
		AuthHandler:         handlers.NewAuthHandler(authService),
		PresentationHandler: handlers.NewPresentationHandler(presentationService, log),
		WebSocket:           wsHub.HandleWebSocket,
		FrontendURL:         cfg.FrontendURL,
		AuthLimiter:         authLimiter,
	}
	if local, ok := store.(*storage.LocalStore); ok {
		opts.FilesDir = local.Root()
	}

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     router.New(opts),
		ReadTimeout: 15 * time.Second,
		// Synchronous generation waits on Gemini and every image fetch.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Backend ready", "addr", "http://localhost:"+cfg.Port, "ws", "ws://localhost:"+cfg.Port+"/ws")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal("Server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown failed", "error", err)
	}
	workerPool.Stop()
}
