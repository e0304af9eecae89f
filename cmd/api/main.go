package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/tinegaCollins/user-manager/internal/audit"
	"github.com/tinegaCollins/user-manager/internal/config"
	"github.com/tinegaCollins/user-manager/internal/database"
	"github.com/tinegaCollins/user-manager/internal/events"
	"github.com/tinegaCollins/user-manager/internal/logger"
	"github.com/tinegaCollins/user-manager/internal/migrations"
	"github.com/tinegaCollins/user-manager/internal/redisstore"
	"github.com/tinegaCollins/user-manager/internal/router"
	"github.com/tinegaCollins/user-manager/internal/users"
)

func main() {
	envFile := config.LoadDotenv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.IsDev())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	if envFile != "" {
		zl.Info("loaded env file", zap.String("path", envFile))
	}

	ctx := context.Background()

	var (
		store users.Store
		aw    audit.Writer = audit.Nop{}
	)
	switch cfg.StoreDriver {
	case config.DriverMemory:
		zl.Warn("using in-memory store; data is lost on restart")
		store = users.NewMemoryStore()
	default:
		if cfg.AutoMigrate {
			migrate(ctx, zl, cfg.DatabaseURL)
		}
		pool, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			zl.Fatal("connect database", zap.Error(err))
		}
		zl.Info("connected to database")
		store = users.NewRepository(pool)
		aw = audit.NewPGWriter(pool)
	}
	defer store.Close()

	var pub events.Publisher = events.Nop{}
	switch {
	case len(cfg.KafkaBrokers) > 0:
		pub = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		zl.Info("publishing user events to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	case cfg.AMQPURL != "":
		ap, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			zl.Fatal("connect rabbitmq", zap.Error(err))
		}
		pub = ap
		zl.Info("publishing user events to rabbitmq", zap.String("exchange", cfg.AMQPExchange))
	}
	if _, nop := pub.(events.Nop); !nop {
		pub = events.NewBreakerPublisher(pub, events.BreakerSettings{
			MaxFailures: cfg.EventsBreakerFailures,
			OpenTimeout: cfg.EventsBreakerTimeout,
		}, zl.Named("events"))
	}
	defer func() {
		if err := pub.Close(); err != nil {
			zl.Warn("close event publisher", zap.Error(err))
		}
	}()

	var limits fiber.Storage
	if cfg.RedisURL != "" {
		rs, err := redisstore.New(ctx, cfg.RedisURL, "user-manager:limiter")
		if err != nil {
			zl.Fatal("connect redis", zap.Error(err))
		}
		defer func() { _ = rs.Close() }()
		limits = rs
		zl.Info("rate limits shared through redis")
	}

	app := router.New(router.Deps{
		Config:         cfg,
		Logger:         zl,
		Store:          store,
		Events:         pub,
		Audit:          aw,
		LimiterStorage: limits,
	})

	go func() {
		zl.Info("listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zl.Fatal("server listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
	zl.Info("server stopped")
}

func migrate(ctx context.Context, zl *zap.Logger, dsn string) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		zl.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	applied, err := migrations.Apply(ctx, db)
	if err != nil {
		zl.Fatal("apply migrations", zap.Error(err))
	}
	zl.Info("migrations applied", zap.Strings("versions", applied))
}
