package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/Raisondetr3/todo-service/internal/config"
	"github.com/Raisondetr3/todo-service/internal/metrics"
	"github.com/Raisondetr3/todo-service/internal/transport/http/middleware"
	"github.com/gorilla/mux"
)

type HTTPServer struct {
	server   *http.Server
	handlers *HTTPHandlers
	config   *config.Config
}

func NewHTTPServer(cfg *config.Config, handlers *HTTPHandlers, m *metrics.Metrics) *HTTPServer {
	return &HTTPServer{
		handlers: handlers,
		config:   cfg,
		server: &http.Server{
			Addr:         ":" + cfg.Server.HTTPPort,
			Handler:      NewRouter(cfg, handlers, m),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}
}

// NewRouter wires middleware and routes. Request logging runs outermost so
// recovered panics and rate-limited requests are still logged with their id.
func NewRouter(cfg *config.Config, handlers *HTTPHandlers, m *metrics.Metrics) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.PanicRecoveryMiddleware)
	router.Use(middleware.MetricsMiddleware(m))
	if cfg.Server.RateLimitRPS > 0 {
		router.Use(middleware.RateLimitMiddleware(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))
	}

	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	handlers.SetupRoutes(router)

	return router
}

func (s *HTTPServer) StartServer() error {
	slog.Info("Starting HTTP server",
		slog.String("address", s.server.Addr),
	)

	if err := s.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("HTTP server stopped")
			return nil
		}
		slog.Error("HTTP server error", slog.String("error", err.Error()))
		return err
	}

	return nil
}

// Serve runs the server on an existing listener.
func (s *HTTPServer) Serve(lis net.Listener) error {
	if err := s.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	slog.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}
