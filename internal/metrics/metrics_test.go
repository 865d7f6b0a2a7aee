package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestObserveHTTP(t *testing.T) {
	m := New()

	m.HTTPStarted()
	m.ObserveHTTP(http.MethodGet, "/api/tasks/{id}", http.StatusNotFound, 10*time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/api/tasks/{id}",status="404"} 1`)
	assert.Contains(t, body, "http_requests_in_flight 0")
	assert.Contains(t, body, `http_request_duration_seconds_count{method="GET",path="/api/tasks/{id}"} 1`)
}

func TestObserveGRPC(t *testing.T) {
	m := New()

	m.ObserveGRPC("/todo.v1.TaskService/GetTask", codes.NotFound, time.Millisecond)
	m.ObserveGRPC("/todo.v1.TaskService/GetTask", codes.NotFound, time.Millisecond)

	assert.Contains(t, scrape(t, m), `grpc_requests_total{code="NotFound",method="/todo.v1.TaskService/GetTask"} 2`)
}

func TestHandlerExposesRuntimeMetrics(t *testing.T) {
	assert.Contains(t, scrape(t, New()), "go_goroutines")
}
