package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/Raisondetr3/todo-service/pkg/logger"
)

type HealthRepository interface {
	HealthCheck(ctx context.Context) error
}

type healthRepository struct {
	db DBTX
}

func NewHealthRepository(db DBTX) HealthRepository {
	return &healthRepository{
		db: db,
	}
}

func (r *healthRepository) HealthCheck(ctx context.Context) error {
	start := time.Now()

	var tasks int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM tasks").Scan(&tasks)

	duration := time.Since(start)

	if err != nil {
		r.logHealthCheckError(ctx, "tasks_table_check", duration, err)
		return HandlePgxError("health_check", err)
	}

	if duration > 100*time.Millisecond {
		logger.LogSlowOperation(ctx, "health_check", duration, 100*time.Millisecond)
	}

	slog.DebugContext(ctx, "Health check successful",
		slog.Duration("duration", duration),
		slog.Int64("tasks", tasks),
	)

	return nil
}

func (r *healthRepository) logHealthCheckError(ctx context.Context, operation string, duration time.Duration, err error) {
	logger.LogDatabaseQuery(ctx, "SELECT COUNT(*) FROM tasks", []any{}, duration, err)

	slog.ErrorContext(ctx, "Health check failed",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
		slog.Duration("duration", duration),
		slog.String("type", "health_check_failure"),
	)
}
