package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Raisondetr3/todo-service/internal/errors"
	"github.com/Raisondetr3/todo-service/pkg/dto"
	"github.com/Raisondetr3/todo-service/pkg/logger"
)

const labelValidationFailed = "Validation Failed"

func statusFor(kind errors.Kind) (int, string) {
	switch kind {
	case errors.KindNotFound:
		return http.StatusNotFound, http.StatusText(http.StatusNotFound)
	case errors.KindDuplicate:
		return http.StatusConflict, http.StatusText(http.StatusConflict)
	case errors.KindValidation:
		return http.StatusBadRequest, labelValidationFailed
	case errors.KindBadRequest:
		return http.StatusBadRequest, http.StatusText(http.StatusBadRequest)
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}

// writeError renders err as the JSON error body. Internal failures are logged
// with their cause but never exposed to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	serviceErr := errors.As(err)
	status, label := statusFor(serviceErr.Kind)

	message := serviceErr.Message
	if serviceErr.Kind == errors.KindInternal {
		message = errors.ErrInternalError.Message
		logger.LogError(r.Context(), err, "http_request",
			slog.String("request_id", logger.RequestIDFromContext(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	body := dto.NewErr(status, label, message)
	body.ValidationErrors = serviceErr.Fields

	writeJSON(w, r, status, body)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.LogError(r.Context(), err, "encode_response")
	}
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	body := dto.NewErr(http.StatusNotFound, http.StatusText(http.StatusNotFound),
		fmt.Sprintf("No handler found for %s %s", r.Method, r.URL.Path))
	writeJSON(w, r, http.StatusNotFound, body)
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	body := dto.NewErr(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed),
		fmt.Sprintf("Method %s is not supported for %s", r.Method, r.URL.Path))
	writeJSON(w, r, http.StatusMethodNotAllowed, body)
}
