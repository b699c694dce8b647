package main

import (
	"context"
	"log"
	"time"

	"notewise/internal/config"
	"notewise/internal/database"
	"notewise/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer logger.Sync()

	if !cfg.HistoryEnabled() {
		l.Fatal("No database configured, set db.host or DB_HOST")
	}

	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := database.RunMigrations(ctx, db.DB, database.Migrations); err != nil {
		l.Fatal("Failed to run migrations", zap.Error(err))
	}
}
