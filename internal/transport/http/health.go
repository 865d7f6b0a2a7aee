package http

import (
	"net/http"

	"github.com/Raisondetr3/todo-service/internal/service"
)

func (h *HTTPHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health, err := h.health.Health(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	statusCode := http.StatusOK
	if health.Status == service.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, r, statusCode, health)
}
