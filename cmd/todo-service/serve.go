package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Raisondetr3/todo-service/internal/metrics"
	"github.com/Raisondetr3/todo-service/internal/service"
	grpcTransport "github.com/Raisondetr3/todo-service/internal/transport/grpc"
	httpTransport "github.com/Raisondetr3/todo-service/internal/transport/http"
	"github.com/Raisondetr3/todo-service/pkg/logger"
	"github.com/spf13/cobra"
)

func (a *app) newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP (and gRPC) API",
		Long:  "Connect to the task store, ensure the schema exists and serve the API until SIGINT or SIGTERM.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context())
		},
	}
}

type server interface {
	StartServer() error
	Stop(ctx context.Context) error
}

func (a *app) runServe(parent context.Context) error {
	cfg := a.cfg
	if parent == nil {
		parent = context.Background()
	}

	logger.LogServiceStart(serviceName, map[string]any{
		"http_port":    cfg.Server.HTTPPort,
		"grpc_port":    cfg.Server.GRPCPort,
		"grpc_enabled": cfg.Server.GRPCEnabled,
		"db_driver":    cfg.Database.Driver,
		"db_host":      cfg.Database.Host,
		"db_name":      cfg.Database.Name,
		"log_level":    cfg.Logging.Level,
		"version":      version,
	})

	defer logger.LogServiceStop(serviceName, "shutdown")

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize database", slog.String("error", err.Error()))
		return err
	}
	defer store.close()

	healthService := service.NewHealthService(store.health)
	taskService := service.NewTaskService(store.tx)
	m := metrics.New()

	handlers := httpTransport.NewHTTPHandlers(cfg, healthService, taskService)
	servers := map[string]server{
		"HTTP": httpTransport.NewHTTPServer(cfg, handlers, m),
	}
	if cfg.Server.GRPCEnabled {
		servers["gRPC"] = grpcTransport.NewGRPCServer(cfg, taskService, m)
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(servers))

	for name, srv := range servers {
		name, srv := name, srv
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.StartServer(); err != nil {
				slog.Error(name+" server error", slog.String("error", err.Error()))
				errCh <- fmt.Errorf("%s server: %w", name, err)
			}
		}()
	}

	logger.LogStartupBanner(fmt.Sprintf("http://localhost:%s", cfg.Server.HTTPPort), httpTransport.Endpoints())

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("Shutting down servers...")
	case runErr = <-errCh:
		slog.Error("Server failed, shutting down", slog.String("error", runErr.Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	for name, srv := range servers {
		slog.Info("Stopping " + name + " server...")
		if err := srv.Stop(shutdownCtx); err != nil {
			slog.Error("Error stopping "+name+" server", slog.String("error", err.Error()))
		}
	}

	slog.Info("Waiting for servers to stop...")
	wg.Wait()

	slog.Info("All servers stopped")
	return runErr
}
