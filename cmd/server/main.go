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

	"viva-backend/internal/config"
	"viva-backend/internal/database"
	"viva-backend/internal/handlers"
	"viva-backend/internal/middleware"
	"viva-backend/internal/repository"
	"viva-backend/internal/router"
	"viva-backend/internal/services"
	"viva-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting Viva Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	sessionRepo := repository.NewSessionRepo(pool)
	studentSessionRepo := repository.NewStudentSessionRepo(pool)
	questionRepo := repository.NewQuestionRepo(pool)
	interviewQuestionRepo := repository.NewInterviewQuestionRepo(pool)
	answerRepo := repository.NewStudentAnswerRepo(pool)
	interviewAnswerRepo := repository.NewInterviewAnswerRepo(pool)
	materialChunkRepo := repository.NewMaterialChunkRepo(pool)

	// ──── Step 5: Initialize Gemini Client ────
	genClient, err := services.NewGenClient(
		cfg.GeminiAPIKey,
		cfg.GeminiModel,
		cfg.GeminiConcurrentReqs,
		cfg.LLMMaxRetries,
		cfg.LLMRetryDelay,
	)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer genClient.Close()
	log.Println("✓ Gemini Flash client initialized")

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	ingestService := services.NewIngestService()
	chunkSearcher := services.NewPGChunkSearcher(materialChunkRepo, redisClients.Cache)
	questionGen := services.NewQuestionGenService(
		genClient,
		chunkSearcher,
		ingestService,
		questionRepo,
		interviewQuestionRepo,
		cfg.QuestionBatchSize,
	)
	evaluator := services.NewEvaluationService(genClient)
	progressPublisher := websocket.NewProgressPublisher(redisClients.PubSub)
	orchestrator := services.NewSessionOrchestrator(
		sessionRepo,
		studentSessionRepo,
		questionRepo,
		interviewQuestionRepo,
		answerRepo,
		interviewAnswerRepo,
		questionGen,
		evaluator,
		progressPublisher,
		cfg.AnswerMaxChars,
		cfg.FeedbackPairLimit,
	)

	// ──── Initialize Handlers ────
	studentSessionHandler := handlers.NewStudentSessionHandler(orchestrator)

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		studentSessionHandler,
		wsHub,
		cfg.FrontendURL,
	)

	// End-session evaluation runs inline and can take a while per answer,
	// so the write timeout is generous.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Viva Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
