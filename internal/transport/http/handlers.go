package http

import (
	"net/http"

	"github.com/Raisondetr3/todo-service/internal/config"
	"github.com/Raisondetr3/todo-service/internal/service"
	"github.com/Raisondetr3/todo-service/pkg/logger"
	"github.com/gorilla/mux"
)

type HTTPHandlers struct {
	config *config.Config
	health service.HealthService
	tasks  service.TaskService
}

func NewHTTPHandlers(cfg *config.Config, healthService service.HealthService, taskService service.TaskService) *HTTPHandlers {
	return &HTTPHandlers{
		config: cfg,
		health: healthService,
		tasks:  taskService,
	}
}

func (h *HTTPHandlers) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HandleHealthCheck).Methods(http.MethodGet)

	api := router.PathPrefix("/api/tasks").Subrouter()

	// Fixed segments first so they are not captured by /{id}.
	api.HandleFunc("/search", h.HandleSearchTasks).Methods(http.MethodGet)
	api.HandleFunc("/stats", h.HandleTaskStats).Methods(http.MethodGet)
	api.HandleFunc("/recent", h.HandleRecentTasks).Methods(http.MethodGet)

	api.HandleFunc("", h.HandleListTasks).Methods(http.MethodGet)
	api.HandleFunc("", h.HandleCreateTask).Methods(http.MethodPost)
	api.HandleFunc("/{id}", h.HandleGetTask).Methods(http.MethodGet)
	api.HandleFunc("/{id}", h.HandleUpdateTask).Methods(http.MethodPut)
	api.HandleFunc("/{id}", h.HandleDeleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/{id}/toggle", h.HandleToggleTask).Methods(http.MethodPatch)

	router.NotFoundHandler = http.HandlerFunc(handleNotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)
}

// Endpoints lists the public routes for the startup banner.
func Endpoints() []logger.Endpoint {
	return []logger.Endpoint{
		{Method: http.MethodGet, Path: "/api/tasks", Description: "List tasks (?completed=, ?title=)"},
		{Method: http.MethodGet, Path: "/api/tasks/{id}", Description: "Get a task"},
		{Method: http.MethodGet, Path: "/api/tasks/search?keyword=", Description: "Search title and description"},
		{Method: http.MethodGet, Path: "/api/tasks/stats", Description: "Completed/pending counts"},
		{Method: http.MethodGet, Path: "/api/tasks/recent", Description: "Ten newest tasks"},
		{Method: http.MethodPost, Path: "/api/tasks", Description: "Create a task"},
		{Method: http.MethodPut, Path: "/api/tasks/{id}", Description: "Replace a task"},
		{Method: http.MethodPatch, Path: "/api/tasks/{id}/toggle", Description: "Toggle completion"},
		{Method: http.MethodDelete, Path: "/api/tasks/{id}", Description: "Delete a task"},
		{Method: http.MethodGet, Path: "/health", Description: "Health check"},
		{Method: http.MethodGet, Path: "/metrics", Description: "Prometheus metrics"},
	}
}
