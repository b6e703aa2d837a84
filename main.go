package main

import (
	"context"
	"fmt"
	"lessons/config"
	"lessons/postgres"
	"lessons/service"
	"os"
	"os/signal"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	log.Init(logrus.InfoLevel)
	logger := watermill.NewStdLogger(false, false)

	if err := run(logger); err != nil {
		logger.Error("failed to run", err, nil)
		os.Exit(1)
	}
}

func run(logger watermill.LoggerAdapter) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Init(cfg.Level())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	deps := service.Deps{
		Config: cfg,
		Logger: logger,
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Error("failed to close redis connection", err, nil)
			}
		}()
		deps.RedisClient = rdb
	}

	if cfg.StoreBackend == "postgres" && cfg.PostgresURL != "" {
		dbConn, err := sqlx.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return fmt.Errorf("connecting to db: %w", err)
		}
		defer func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close db connection", err, nil)
			}
		}()

		if err := postgres.InitialiseDB(ctx, dbConn); err != nil {
			return fmt.Errorf("initialising db: %w", err)
		}
		deps.DB = dbConn
	} else if cfg.StoreBackend == "postgres" {
		logrus.Warn("POSTGRES_URL not set, booking endpoints will report the database as not configured")
	}

	svc, err := service.New(deps)
	if err != nil {
		return fmt.Errorf("creating service: %w", err)
	}

	return svc.Run(ctx)
}
