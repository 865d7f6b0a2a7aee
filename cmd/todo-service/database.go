package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Raisondetr3/todo-service/internal/config"
	"github.com/Raisondetr3/todo-service/internal/repository"
	"github.com/Raisondetr3/todo-service/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

// storage is the task store selected by configuration.
type storage struct {
	tx     repository.Transactor
	health repository.HealthRepository
	close  func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.Database.Driver == "memory" {
		slog.Warn("Using in-memory task store, data is lost on restart")
		store := repository.NewMemoryStore()
		return &storage{tx: store, health: store, close: func() {}}, nil
	}

	pool, err := initDatabaseWithRetry(ctx, cfg, cfg.Database.ConnectRetries, cfg.Database.RetryDelay)
	if err != nil {
		return nil, err
	}

	if err := repository.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &storage{
		tx:     repository.NewTransactor(pool),
		health: repository.NewHealthRepository(pool),
		close:  pool.Close,
	}, nil
}

func initDatabaseWithRetry(ctx context.Context, cfg *config.Config, maxRetries int, delay time.Duration) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	for i := 0; i < maxRetries; i++ {
		slog.Info("Attempting to connect to database",
			slog.Int("attempt", i+1),
			slog.Int("max_attempts", maxRetries))

		pool, err = initDatabase(ctx, cfg)
		if err == nil {
			slog.Info("Successfully connected to database")
			return pool, nil
		}

		logger.LogDatabaseConnection(ctx, cfg.Database.DSN(), "connect", err)

		if i == maxRetries-1 {
			break
		}

		slog.Warn("Database connection failed, retrying...",
			slog.String("error", err.Error()),
			slog.Duration("retry_in", delay))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("connect to database after %d attempts: %w", maxRetries, err)
}

func initDatabase(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConns = cfg.Database.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.LogDatabaseConnection(ctx, cfg.Database.DSN(), "connect", nil)

	return pool, nil
}
