package repository

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Raisondetr3/todo-service/internal/model"
	"github.com/Raisondetr3/todo-service/pkg/logger"
	"github.com/jackc/pgx/v5"
)

type TaskRepository interface {
	FindAll(ctx context.Context) ([]*model.Task, error)
	FindByID(ctx context.Context, id int64) (*model.Task, error)
	FindByCompleted(ctx context.Context, completed bool) ([]*model.Task, error)
	FindByTitleContaining(ctx context.Context, text string) ([]*model.Task, error)
	FindByCompletedAndTitleContaining(ctx context.Context, completed bool, text string) ([]*model.Task, error)
	SearchByKeyword(ctx context.Context, keyword string) ([]*model.Task, error)
	FindRecent(ctx context.Context, limit int) ([]*model.Task, error)
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	CountByCompleted(ctx context.Context, completed bool) (int64, error)
	Save(ctx context.Context, task *model.Task) (*model.Task, error)
	ToggleCompleted(ctx context.Context, id int64) (*model.Task, error)
	DeleteByID(ctx context.Context, id int64) error
	// LockTitle serializes creates of the same title until the surrounding
	// transaction ends.
	LockTitle(ctx context.Context, title string) error
}

const taskColumns = `id, title, description, completed, created_at, updated_at`

// nextUpdatedAt keeps updated_at strictly increasing even when two writes land
// within the clock's resolution.
const nextUpdatedAt = `GREATEST(clock_timestamp(), updated_at + interval '1 microsecond')`

type taskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) TaskRepository {
	return &taskRepository{
		db: db,
	}
}

func (r *taskRepository) FindAll(ctx context.Context) ([]*model.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks ORDER BY id`
	return r.queryTasks(ctx, "find_all_tasks", q)
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*model.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return r.queryTask(ctx, "find_task_by_id", q, id)
}

func (r *taskRepository) FindByCompleted(ctx context.Context, completed bool) ([]*model.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE completed = $1 ORDER BY id`
	return r.queryTasks(ctx, "find_tasks_by_completed", q, completed)
}

func (r *taskRepository) FindByTitleContaining(ctx context.Context, text string) ([]*model.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE title ILIKE '%' || $1 || '%' ORDER BY id`
	return r.queryTasks(ctx, "find_tasks_by_title", q, escapeLike(text))
}

func (r *taskRepository) FindByCompletedAndTitleContaining(ctx context.Context, completed bool, text string) ([]*model.Task, error) {
	q := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE completed = $1 AND title ILIKE '%' || $2 || '%'
		ORDER BY id
	`
	return r.queryTasks(ctx, "find_tasks_by_completed_and_title", q, completed, escapeLike(text))
}

func (r *taskRepository) SearchByKeyword(ctx context.Context, keyword string) ([]*model.Task, error) {
	q := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'
		ORDER BY id
	`
	return r.queryTasks(ctx, "search_tasks_by_keyword", q, escapeLike(keyword))
}

func (r *taskRepository) FindRecent(ctx context.Context, limit int) ([]*model.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC, id DESC LIMIT $1`
	return r.queryTasks(ctx, "find_recent_tasks", q, limit)
}

func (r *taskRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	q := `SELECT EXISTS (SELECT 1 FROM tasks WHERE title = $1)`
	return r.queryBool(ctx, "exists_task_by_title", q, title)
}

func (r *taskRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	q := `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`
	return r.queryBool(ctx, "exists_task_by_id", q, id)
}

func (r *taskRepository) CountByCompleted(ctx context.Context, completed bool) (int64, error) {
	start := time.Now()
	q := `SELECT COUNT(*) FROM tasks WHERE completed = $1`

	var count int64
	err := r.db.QueryRow(ctx, q, completed).Scan(&count)

	duration := time.Since(start)

	if err != nil {
		r.logCriticalDBError(ctx, "count_tasks_by_completed", q, duration, err)
		return 0, HandlePgxError("count_tasks_by_completed", err)
	}

	r.logSlowQuery(ctx, "count_tasks_by_completed", duration)
	return count, nil
}

// Save inserts a new task when its ID is zero and otherwise overwrites title,
// description and completed of the existing row.
func (r *taskRepository) Save(ctx context.Context, task *model.Task) (*model.Task, error) {
	if task.IsNew() {
		q := `
			INSERT INTO tasks (title, description, completed)
			VALUES ($1, $2, $3)
			RETURNING ` + taskColumns
		return r.queryTask(ctx, "insert_task", q, task.Title, task.Description, task.Completed)
	}

	q := `
		UPDATE tasks
		SET title = $2, description = $3, completed = $4, updated_at = ` + nextUpdatedAt + `
		WHERE id = $1
		RETURNING ` + taskColumns
	return r.queryTask(ctx, "update_task", q, task.ID, task.Title, task.Description, task.Completed)
}

func (r *taskRepository) ToggleCompleted(ctx context.Context, id int64) (*model.Task, error) {
	q := `
		UPDATE tasks
		SET completed = NOT completed, updated_at = ` + nextUpdatedAt + `
		WHERE id = $1
		RETURNING ` + taskColumns
	return r.queryTask(ctx, "toggle_task", q, id)
}

func (r *taskRepository) DeleteByID(ctx context.Context, id int64) error {
	start := time.Now()
	q := `DELETE FROM tasks WHERE id = $1`

	commandTag, err := r.db.Exec(ctx, q, id)
	duration := time.Since(start)

	if err != nil {
		r.logCriticalDBError(ctx, "delete_task", q, duration, err)
		return HandlePgxError("delete_task", err)
	}

	if commandTag.RowsAffected() == 0 {
		return WrapError("delete_task", ErrTaskNotFound)
	}

	r.logSlowQuery(ctx, "delete_task", duration)
	return nil
}

func (r *taskRepository) LockTitle(ctx context.Context, title string) error {
	start := time.Now()
	q := `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`

	_, err := r.db.Exec(ctx, q, title)
	duration := time.Since(start)

	if err != nil {
		r.logCriticalDBError(ctx, "lock_task_title", q, duration, err)
		return HandlePgxError("lock_task_title", err)
	}

	r.logSlowQuery(ctx, "lock_task_title", duration)
	return nil
}

func (r *taskRepository) queryTask(ctx context.Context, op, q string, args ...any) (*model.Task, error) {
	start := time.Now()

	task, err := scanTask(r.db.QueryRow(ctx, q, args...))

	duration := time.Since(start)

	if err != nil {
		if !isExpectedPgxError(err) {
			r.logCriticalDBError(ctx, op, q, duration, err)
		}
		return nil, HandlePgxError(op, err)
	}

	r.logSlowQuery(ctx, op, duration)
	return task, nil
}

func (r *taskRepository) queryTasks(ctx context.Context, op, q string, args ...any) ([]*model.Task, error) {
	start := time.Now()

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		r.logCriticalDBError(ctx, op, q, time.Since(start), err)
		return nil, HandlePgxError(op, err)
	}
	defer rows.Close()

	tasks := make([]*model.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			r.logCriticalDBError(ctx, op+"_scan", "", time.Since(start), err)
			return nil, HandlePgxError(op+"_scan", err)
		}
		tasks = append(tasks, task)
	}

	duration := time.Since(start)
	if err = rows.Err(); err != nil {
		r.logCriticalDBError(ctx, op+"_iteration", "", duration, err)
		return nil, HandlePgxError(op+"_iteration", err)
	}

	r.logSlowQuery(ctx, op, duration)
	return tasks, nil
}

func (r *taskRepository) queryBool(ctx context.Context, op, q string, arg any) (bool, error) {
	start := time.Now()

	var exists bool
	err := r.db.QueryRow(ctx, q, arg).Scan(&exists)

	duration := time.Since(start)

	if err != nil {
		r.logCriticalDBError(ctx, op, q, duration, err)
		return false, HandlePgxError(op, err)
	}

	r.logSlowQuery(ctx, op, duration)
	return exists, nil
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var task model.Task
	err := row.Scan(
		&task.ID, &task.Title, &task.Description,
		&task.Completed, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// escapeLike makes text match literally inside an ILIKE pattern.
func escapeLike(text string) string {
	return likeEscaper.Replace(text)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *taskRepository) logCriticalDBError(ctx context.Context, operation, query string, duration time.Duration, err error) {
	logger.LogDatabaseQuery(ctx, query, []any{}, duration, err)

	slog.ErrorContext(ctx, "Critical database error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
		slog.Duration("duration", duration),
	)
}

func (r *taskRepository) logSlowQuery(ctx context.Context, operation string, duration time.Duration) {
	threshold := 500 * time.Millisecond
	if duration > threshold {
		logger.LogSlowOperation(ctx, operation, duration, threshold)
	}
}
