package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Raisondetr3/todo-service/pkg/dto"
	"github.com/Raisondetr3/todo-service/pkg/logger"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware admits at most rps requests per second across all
// clients, with bursts up to burst. Rejected requests get 429.
func RateLimitMiddleware(rps float64, burst int) mux.MiddlewareFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				logger.WithRequestID(logger.RequestIDFromContext(r.Context())).WarnContext(r.Context(), "Rate limit exceeded",
					slog.String("path", r.URL.Path),
				)

				body := dto.NewErr(http.StatusTooManyRequests,
					http.StatusText(http.StatusTooManyRequests), "Rate limit exceeded, retry later")
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(body.ToString()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
