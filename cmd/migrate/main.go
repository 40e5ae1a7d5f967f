package main

import (
	"context"
	"log"

	"glinax/pkg/config"
	"glinax/pkg/logger"
	"glinax/pkg/postgres"

	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS rag_logs (
	id UUID PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	query TEXT NOT NULL,
	response TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	sources JSONB NOT NULL DEFAULT '[]',
	processing_time DOUBLE PRECISION NOT NULL DEFAULT 0,
	has_files BOOLEAN NOT NULL DEFAULT FALSE,
	timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_rag_logs_conversation ON rag_logs (conversation_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_rag_logs_user ON rag_logs (user_id, timestamp DESC);
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if _, err := db.Exec(ctx, schema); err != nil {
		appLogger.Fatal("Migration failed", zap.Error(err))
	}
	appLogger.Info("Migration completed", zap.String("database", cfg.Database.DBName))
}
