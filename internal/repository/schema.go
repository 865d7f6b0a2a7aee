package repository

import (
	"context"
	"log/slog"
	"time"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
		id          BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		title       VARCHAR(100) NOT NULL,
		description TEXT,
		completed   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT tasks_description_len CHECK (description IS NULL OR char_length(description) <= 500),
		CONSTRAINT tasks_timestamps_order CHECK (created_at <= updated_at)
	)`,
	// Titles are only unique at creation time; tables bootstrapped by older
	// releases still carry the constraint.
	`ALTER TABLE tasks DROP CONSTRAINT IF EXISTS tasks_title_key`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_title ON tasks (title)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_completed ON tasks (completed)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks (created_at DESC)`,
}

// EnsureSchema creates the tasks table and its indexes when they are missing.
// It is safe to run on every start.
func EnsureSchema(ctx context.Context, db DBTX) error {
	start := time.Now()

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return HandlePgxError("ensure_schema", err)
		}
	}

	slog.InfoContext(ctx, "Database schema ready",
		slog.Int("statements", len(schemaStatements)),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}
