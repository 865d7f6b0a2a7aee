package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Raisondetr3/todo-service/internal/repository"
	"github.com/spf13/cobra"
)

var errMemoryDriver = errors.New("database commands require DB_DRIVER=postgres")

func (a *app) newDBCommand() *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance commands",
	}

	dbCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the tasks table and indexes if they are missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDBInit(cmd.Context())
		},
	})

	dbCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Verify the database is reachable and the schema is in place",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDBCheck(cmd.Context())
		},
	})

	return dbCmd
}

func (a *app) runDBInit(ctx context.Context) error {
	if a.cfg.Database.Driver != "postgres" {
		return errMemoryDriver
	}
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := initDatabaseWithRetry(ctx, a.cfg, a.cfg.Database.ConnectRetries, a.cfg.Database.RetryDelay)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := repository.EnsureSchema(ctx, pool); err != nil {
		slog.Error("Schema initialization failed", slog.String("error", err.Error()))
		return err
	}

	fmt.Println("Database schema is up to date")
	return nil
}

func (a *app) runDBCheck(ctx context.Context) error {
	if a.cfg.Database.Driver != "postgres" {
		return errMemoryDriver
	}
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := initDatabaseWithRetry(ctx, a.cfg, 1, 0)
	if err != nil {
		return err
	}
	defer pool.Close()

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := repository.NewHealthRepository(pool).HealthCheck(checkCtx); err != nil {
		fmt.Println("Database check failed:", err)
		return err
	}

	fmt.Println("Database is healthy")
	return nil
}
