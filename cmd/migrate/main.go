package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/tinegaCollins/user-manager/internal/config"
	"github.com/tinegaCollins/user-manager/internal/logger"
	"github.com/tinegaCollins/user-manager/internal/migrations"
)

func main() {
	config.LoadDotenv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.StoreDriver != config.DriverPostgres {
		log.Fatalf("migrations need STORE_DRIVER=%s", config.DriverPostgres)
	}

	zl, err := logger.New(cfg.IsDev())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		zl.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		zl.Fatal("ping database", zap.Error(err))
	}

	zl.Info("applying migrations")
	applied, err := migrations.Apply(ctx, db)
	if err != nil {
		zl.Fatal("apply migrations", zap.Error(err))
	}
	if len(applied) == 0 {
		zl.Info("schema already up to date")
		return
	}
	zl.Info("migrations applied", zap.Strings("versions", applied))
}
