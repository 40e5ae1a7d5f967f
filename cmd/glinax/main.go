package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"glinax/internal/api"
	"glinax/internal/api/handlers"
	"glinax/internal/knowledge"
	"glinax/internal/repository"
	"glinax/internal/service"
	"glinax/pkg/auth"
	"glinax/pkg/config"
	"glinax/pkg/logger"
	"glinax/pkg/postgres"

	"go.uber.org/zap"
)

// @title Glinax RAG API
// @version 1.0
// @description Hybrid retrieval and synthesis service for Ghanaian university admissions questions

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting Glinax RAG service")

	// Database is optional: without it the service answers questions but
	// keeps no history.
	ctx := context.Background()
	var convRepo *repository.ConversationRepository
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Warn("Database unavailable, running without conversation history", zap.Error(err))
	} else {
		defer db.Close()
		convRepo = repository.NewConversationRepository(db)
	}

	// Load the knowledge base
	store, err := knowledge.Load(cfg.Knowledge.Path, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load knowledge base", zap.Error(err))
	}
	appLogger.Info("Knowledge base loaded", zap.Int("records", store.Len()))

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey)

	// Initialize services
	retrievalService := service.NewRetrievalService(store, appLogger)
	searchService := service.NewSearchService(&cfg.Search, appLogger)
	answerService := service.NewAnswerService(store, appLogger)
	extractService := service.NewExtractService(appLogger)

	var completer service.Completer
	if cfg.Groq.APIKey != "" {
		completer = service.NewLLMService(&cfg.Groq, appLogger)
		appLogger.Info("Generative synthesis enabled", zap.String("model", cfg.Groq.Model))
	} else {
		appLogger.Warn("GROQ_API_KEY not set, using deterministic answers only")
	}

	var recorder service.TurnRecorder
	if convRepo != nil {
		recorder = convRepo
	}
	chatService := service.NewChatService(
		retrievalService,
		searchService,
		completer,
		answerService,
		extractService,
		recorder,
		appLogger,
	)

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(chatService, appLogger)
	historyHandler := handlers.NewHistoryHandler(convRepo, appLogger)

	// Setup router
	app := api.SetupRouter(chatHandler, historyHandler, jwtManager, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
