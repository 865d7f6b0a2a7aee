package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Raisondetr3/todo-service/pkg/dto"
	"github.com/Raisondetr3/todo-service/pkg/logger"
)

// PanicRecoveryMiddleware turns a handler panic into the standard 500 error body.
func PanicRecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := wrap(w)

		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}

				log := logger.WithRequestID(logger.RequestIDFromContext(r.Context()))
				log.ErrorContext(r.Context(), "Panic recovered in HTTP handler",
					slog.Any("panic", err),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)

				if wrapped.statusCode != 0 {
					return
				}

				body := dto.NewErr(http.StatusInternalServerError,
					http.StatusText(http.StatusInternalServerError), "An unexpected error occurred")
				wrapped.Header().Set("Content-Type", "application/json")
				wrapped.WriteHeader(http.StatusInternalServerError)
				_, _ = wrapped.Write([]byte(body.ToString()))
			}
		}()

		next.ServeHTTP(wrapped, r)
	})
}
