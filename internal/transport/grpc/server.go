package grpc

import (
	"context"
	"log/slog"
	"net"

	"github.com/Raisondetr3/todo-service/internal/config"
	"github.com/Raisondetr3/todo-service/internal/metrics"
	"github.com/Raisondetr3/todo-service/internal/service"
	"github.com/Raisondetr3/todo-service/internal/transport/grpc/middleware"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type GRPCServer struct {
	taskService service.TaskService
	server      *grpc.Server
	health      *health.Server
	config      *config.Config
}

func NewGRPCServer(cfg *config.Config, taskService service.TaskService, m *metrics.Metrics) *GRPCServer {
	server := grpc.NewServer(
		grpc.UnaryInterceptor(
			middleware.ChainUnaryInterceptors(
				middleware.RequestIDUnaryInterceptor,
				middleware.LoggingUnaryInterceptor,
				middleware.MetricsUnaryInterceptor(m),
				middleware.PanicRecoveryUnaryInterceptor,
			),
		),
	)

	grpcServer := &GRPCServer{
		taskService: taskService,
		server:      server,
		health:      health.NewServer(),
		config:      cfg,
	}

	RegisterTaskServiceServer(server, grpcServer)
	healthpb.RegisterHealthServer(server, grpcServer.health)
	grpcServer.health.SetServingStatus(TaskServiceName, healthpb.HealthCheckResponse_SERVING)

	return grpcServer
}

func (s *GRPCServer) StartServer() error {
	address := ":" + s.config.Server.GRPCPort

	listener, err := net.Listen("tcp", address)
	if err != nil {
		slog.Error("Failed to listen on gRPC port",
			slog.String("address", address),
			slog.String("error", err.Error()))
		return err
	}

	slog.Info("gRPC server starting", slog.String("address", address))

	return s.Serve(listener)
}

func (s *GRPCServer) Serve(listener net.Listener) error {
	if err := s.server.Serve(listener); err != nil {
		slog.Error("gRPC server error", slog.String("error", err.Error()))
		return err
	}

	return nil
}

func (s *GRPCServer) Stop(ctx context.Context) error {
	slog.Info("Stopping gRPC server")

	s.health.Shutdown()

	done := make(chan struct{})

	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("gRPC server stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.Warn("gRPC server shutdown timeout, forcing stop")
		s.server.Stop()
		return ctx.Err()
	}
}
