package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	Level    string
	FilePath string
	FileName string
}

// SetupLogger installs a JSON slog handler as the process default. Records go to
// stdout and, when FilePath is set, are also appended to FilePath/FileName.
func SetupLogger(cfg Config, serviceName string) error {
	out, err := openOutput(cfg, serviceName)
	if err != nil {
		return err
	}

	slog.SetDefault(New(out, ParseLevel(cfg.Level), serviceName))
	return nil
}

func New(out io.Writer, level slog.Level, serviceName string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	return slog.New(slog.NewJSONHandler(out, opts)).With(
		slog.String("service", serviceName),
	)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openOutput(cfg Config, serviceName string) (io.Writer, error) {
	if cfg.FilePath == "" {
		return os.Stdout, nil
	}

	if err := os.MkdirAll(cfg.FilePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	if cfg.FileName == "" {
		cfg.FileName = fmt.Sprintf("%s.log", serviceName)
	}

	fullPath := filepath.Join(cfg.FilePath, cfg.FileName)

	logFile, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return io.MultiWriter(os.Stdout, logFile), nil
}

func LogHTTPRequest(ctx context.Context, method, path, userAgent, requestID string, duration time.Duration, statusCode int) {
	if ctx == nil {
		ctx = context.Background()
	}

	attrs := []slog.Attr{
		slog.String("type", "http_request"),
		slog.String("method", method),
		slog.String("path", path),
		slog.String("user_agent", userAgent),
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
		slog.Int("status_code", statusCode),
	}

	if statusCode >= 500 {
		slog.LogAttrs(ctx, slog.LevelError, "HTTP Request", attrs...)
	} else if statusCode >= 400 {
		slog.LogAttrs(ctx, slog.LevelWarn, "HTTP Request", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "HTTP Request", attrs...)
	}
}

func LogGRPCRequest(ctx context.Context, method, requestID string, duration time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("type", "grpc_request"),
		slog.String("method", method),
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "gRPC Request Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "gRPC Request", attrs...)
	}
}

func LogDatabaseQuery(ctx context.Context, query string, args []any, duration time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("type", "database_query"),
		slog.String("query", query),
		slog.Any("args", args),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "Database Query Failed", attrs...)
	} else {
		if duration > 1*time.Second {
			attrs = append(attrs, slog.String("slow_query", "true"))
			slog.LogAttrs(ctx, slog.LevelWarn, "Slow Database Query", attrs...)
		} else {
			slog.LogAttrs(ctx, slog.LevelDebug, "Database Query", attrs...)
		}
	}
}

func LogDatabaseConnection(ctx context.Context, dsn string, operation string, err error) {
	maskedDSN := maskPassword(dsn)

	attrs := []slog.Attr{
		slog.String("type", "database_connection"),
		slog.String("dsn", maskedDSN),
		slog.String("operation", operation),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "Database Connection Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "Database Connection", attrs...)
	}
}

func LogTransaction(ctx context.Context, mode, outcome string, duration time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("type", "database_transaction"),
		slog.String("mode", mode),
		slog.String("outcome", outcome),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelWarn, "Transaction Rolled Back", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelDebug, "Transaction Finished", attrs...)
	}
}

func LogError(ctx context.Context, err error, operation string, additionalFields ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("type", "error"),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	}
	attrs = append(attrs, additionalFields...)

	slog.LogAttrs(ctx, slog.LevelError, "Operation Error", attrs...)
}

// LogTaskOperation records one service call. Expected failures (not found,
// conflicts) are passed with expected=true and logged at warn level.
func LogTaskOperation(ctx context.Context, operation string, taskID int64, duration time.Duration, err error, expected bool) {
	attrs := []slog.Attr{
		slog.String("type", "task_operation"),
		slog.String("operation", operation),
		slog.Duration("duration", duration),
	}
	if taskID != 0 {
		attrs = append(attrs, slog.Int64("task_id", taskID))
	}

	switch {
	case err == nil:
		slog.LogAttrs(ctx, slog.LevelInfo, "Task Operation", attrs...)
	case expected:
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelWarn, "Task Operation Rejected", attrs...)
	default:
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "Task Operation Failed", attrs...)
	}
}

// WithRequestID returns the default logger tagged with requestID.
func WithRequestID(requestID string) *slog.Logger {
	return slog.With(slog.String("request_id", requestID))
}

// maskPassword hides the password in keyword/value DSNs and in postgres:// URLs,
// both in the userinfo and in a password query parameter.
func maskPassword(dsn string) string {
	if dsn == "" {
		return dsn
	}

	if strings.Contains(dsn, "://") {
		if u, err := url.Parse(dsn); err == nil {
			dsn = u.Redacted()
		} else {
			return "***"
		}
	}

	start := strings.Index(dsn, "password=")
	if start == -1 {
		return dsn
	}

	start += len("password=")
	end := start

	for end < len(dsn) && dsn[end] != ' ' && dsn[end] != '&' {
		end++
	}

	masked := dsn[:start] + "***"
	if end < len(dsn) {
		masked += dsn[end:]
	}

	return masked
}

func LogSlowOperation(ctx context.Context, operation string, duration time.Duration, threshold time.Duration) {
	if duration <= threshold {
		return
	}

	attrs := []slog.Attr{
		slog.String("type", "slow_operation"),
		slog.String("operation", operation),
		slog.Duration("duration", duration),
		slog.Duration("threshold", threshold),
	}

	slog.LogAttrs(ctx, slog.LevelWarn, "Slow Operation Detected", attrs...)
}

func LogServiceStart(serviceName string, config map[string]any) {
	attrs := []slog.Attr{
		slog.String("type", "service_lifecycle"),
		slog.String("event", "start"),
		slog.String("service", serviceName),
		slog.Any("config", config),
	}

	slog.LogAttrs(context.Background(), slog.LevelInfo, "Service Starting", attrs...)
}

func LogServiceStop(serviceName string, reason string) {
	attrs := []slog.Attr{
		slog.String("type", "service_lifecycle"),
		slog.String("event", "stop"),
		slog.String("service", serviceName),
		slog.String("reason", reason),
	}

	slog.LogAttrs(context.Background(), slog.LevelInfo, "Service Stopping", attrs...)
}

// Endpoint is one line of the startup banner.
type Endpoint struct {
	Method      string
	Path        string
	Description string
}

// LogStartupBanner logs where the API is reachable and which routes it serves.
func LogStartupBanner(baseURL string, endpoints []Endpoint) {
	routes := make([]string, 0, len(endpoints))
	for _, e := range endpoints {
		routes = append(routes, fmt.Sprintf("%-6s %-28s %s", e.Method, e.Path, e.Description))
	}

	attrs := []slog.Attr{
		slog.String("type", "startup_banner"),
		slog.String("base_url", baseURL),
		slog.Any("endpoints", routes),
	}

	slog.LogAttrs(context.Background(), slog.LevelInfo, "Application started successfully", attrs...)
}

type requestIDKey struct{}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the id stored by ContextWithRequestID, or "unknown".
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return requestID
	}
	return "unknown"
}
