package middleware

import (
	"net/http"
	"time"

	"github.com/Raisondetr3/todo-service/internal/metrics"
	"github.com/gorilla/mux"
)

// MetricsMiddleware records request counts and latency labelled by route
// template, so /api/tasks/1 and /api/tasks/2 share a series.
func MetricsMiddleware(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrap(w)

			m.HTTPStarted()
			defer func() {
				m.ObserveHTTP(r.Method, routeTemplate(r), wrapped.status(), time.Since(start))
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
