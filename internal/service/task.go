package service

import (
	"context"
	"time"

	"github.com/Raisondetr3/todo-service/internal/errors"
	"github.com/Raisondetr3/todo-service/internal/model"
	"github.com/Raisondetr3/todo-service/internal/repository"
	"github.com/Raisondetr3/todo-service/pkg/logger"
)

// RecentLimit is how many tasks Recent returns.
const RecentLimit = 10

// TaskService holds the task use cases. Every method runs in exactly one
// transaction and returns *errors.ServiceError on failure.
type TaskService interface {
	ListAll(ctx context.Context) ([]*model.Task, error)
	ListByCompletion(ctx context.Context, completed bool) ([]*model.Task, error)
	Get(ctx context.Context, id int64) (*model.Task, error)
	SearchByTitle(ctx context.Context, text string) ([]*model.Task, error)
	SearchByKeyword(ctx context.Context, keyword string) ([]*model.Task, error)
	Filter(ctx context.Context, completed *bool, title string) ([]*model.Task, error)
	Recent(ctx context.Context) ([]*model.Task, error)
	Create(ctx context.Context, candidate *model.Task) (*model.Task, error)
	Update(ctx context.Context, id int64, values *model.Task) (*model.Task, error)
	ToggleCompletion(ctx context.Context, id int64) (*model.Task, error)
	Delete(ctx context.Context, id int64) error
	CountCompleted(ctx context.Context) (int64, error)
	CountPending(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (model.Stats, error)
}

type taskService struct {
	tx repository.Transactor
}

func NewTaskService(tx repository.Transactor) TaskService {
	return &taskService{
		tx: tx,
	}
}

func (s *taskService) ListAll(ctx context.Context) ([]*model.Task, error) {
	return s.list(ctx, "ListAll", func(repo repository.TaskRepository) ([]*model.Task, error) {
		return repo.FindAll(ctx)
	})
}

func (s *taskService) ListByCompletion(ctx context.Context, completed bool) ([]*model.Task, error) {
	return s.list(ctx, "ListByCompletion", func(repo repository.TaskRepository) ([]*model.Task, error) {
		return repo.FindByCompleted(ctx, completed)
	})
}

func (s *taskService) Get(ctx context.Context, id int64) (*model.Task, error) {
	start := time.Now()
	operation := "GetTask"

	var task *model.Task
	err := s.tx.ReadOnly(ctx, func(repo repository.TaskRepository) error {
		var err error
		task, err = repo.FindByID(ctx, id)
		return err
	})

	return finish(ctx, operation, id, "", start, task, err)
}

func (s *taskService) SearchByTitle(ctx context.Context, text string) ([]*model.Task, error) {
	return s.list(ctx, "SearchByTitle", func(repo repository.TaskRepository) ([]*model.Task, error) {
		return repo.FindByTitleContaining(ctx, text)
	})
}

func (s *taskService) SearchByKeyword(ctx context.Context, keyword string) ([]*model.Task, error) {
	return s.list(ctx, "SearchByKeyword", func(repo repository.TaskRepository) ([]*model.Task, error) {
		return repo.SearchByKeyword(ctx, keyword)
	})
}

// Filter combines the optional completion flag and title substring. An empty
// title means no title filter.
func (s *taskService) Filter(ctx context.Context, completed *bool, title string) ([]*model.Task, error) {
	return s.list(ctx, "FilterTasks", func(repo repository.TaskRepository) ([]*model.Task, error) {
		switch {
		case completed != nil && title != "":
			return repo.FindByCompletedAndTitleContaining(ctx, *completed, title)
		case completed != nil:
			return repo.FindByCompleted(ctx, *completed)
		case title != "":
			return repo.FindByTitleContaining(ctx, title)
		default:
			return repo.FindAll(ctx)
		}
	})
}

func (s *taskService) Recent(ctx context.Context) ([]*model.Task, error) {
	return s.list(ctx, "RecentTasks", func(repo repository.TaskRepository) ([]*model.Task, error) {
		return repo.FindRecent(ctx, RecentLimit)
	})
}

// Create persists a new, not yet completed task. Titles are unique at creation
// only; the title lock makes the check and the insert atomic against
// concurrent creates of the same title.
func (s *taskService) Create(ctx context.Context, candidate *model.Task) (*model.Task, error) {
	start := time.Now()
	operation := "CreateTask"

	task := model.NewTask(candidate.Title, candidate.Description)

	var saved *model.Task
	err := s.tx.ReadWrite(ctx, func(repo repository.TaskRepository) error {
		if err := repo.LockTitle(ctx, task.Title); err != nil {
			return err
		}

		exists, err := repo.ExistsByTitle(ctx, task.Title)
		if err != nil {
			return err
		}
		if exists {
			return errors.DuplicateTitle(task.Title)
		}

		saved, err = repo.Save(ctx, task)
		return err
	})

	var id int64
	if saved != nil {
		id = saved.ID
	}
	return finish(ctx, operation, id, task.Title, start, saved, err)
}

// Update replaces title, description and completed of an existing task. The new
// title is not checked for uniqueness, so it may match another task's title.
func (s *taskService) Update(ctx context.Context, id int64, values *model.Task) (*model.Task, error) {
	start := time.Now()
	operation := "UpdateTask"

	var saved *model.Task
	err := s.tx.ReadWrite(ctx, func(repo repository.TaskRepository) error {
		task, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		task.Replace(values.Title, values.Description, values.Completed)

		saved, err = repo.Save(ctx, task)
		return err
	})

	return finish(ctx, operation, id, values.Title, start, saved, err)
}

func (s *taskService) ToggleCompletion(ctx context.Context, id int64) (*model.Task, error) {
	start := time.Now()
	operation := "ToggleTask"

	var toggled *model.Task
	err := s.tx.ReadWrite(ctx, func(repo repository.TaskRepository) error {
		var err error
		toggled, err = repo.ToggleCompleted(ctx, id)
		return err
	})

	return finish(ctx, operation, id, "", start, toggled, err)
}

func (s *taskService) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	operation := "DeleteTask"

	err := s.tx.ReadWrite(ctx, func(repo repository.TaskRepository) error {
		exists, err := repo.ExistsByID(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return errors.TaskNotFound(id)
		}
		return repo.DeleteByID(ctx, id)
	})

	_, err = finish(ctx, operation, id, "", start, (*model.Task)(nil), err)
	return err
}

func (s *taskService) CountCompleted(ctx context.Context) (int64, error) {
	return s.count(ctx, "CountCompleted", true)
}

func (s *taskService) CountPending(ctx context.Context) (int64, error) {
	return s.count(ctx, "CountPending", false)
}

// Stats reads both counters from one snapshot so the total is consistent.
func (s *taskService) Stats(ctx context.Context) (model.Stats, error) {
	start := time.Now()
	operation := "TaskStats"

	var stats model.Stats
	err := s.tx.ReadOnly(ctx, func(repo repository.TaskRepository) error {
		var err error
		if stats.Completed, err = repo.CountByCompleted(ctx, true); err != nil {
			return err
		}
		stats.Pending, err = repo.CountByCompleted(ctx, false)
		return err
	})

	if _, err := finish(ctx, operation, 0, "", start, &stats, err); err != nil {
		return model.Stats{}, err
	}
	return stats, nil
}

func (s *taskService) count(ctx context.Context, operation string, completed bool) (int64, error) {
	start := time.Now()

	var n int64
	err := s.tx.ReadOnly(ctx, func(repo repository.TaskRepository) error {
		var err error
		n, err = repo.CountByCompleted(ctx, completed)
		return err
	})

	if _, err := finish(ctx, operation, 0, "", start, &n, err); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *taskService) list(ctx context.Context, operation string, query func(repository.TaskRepository) ([]*model.Task, error)) ([]*model.Task, error) {
	start := time.Now()

	var tasks []*model.Task
	err := s.tx.ReadOnly(ctx, func(repo repository.TaskRepository) error {
		var err error
		tasks, err = query(repo)
		return err
	})

	return finish(ctx, operation, 0, "", start, tasks, err)
}

// finish maps err onto the service error taxonomy and logs the operation.
func finish[T any](ctx context.Context, operation string, id int64, title string, start time.Time, result T, err error) (T, error) {
	duration := time.Since(start)

	if err != nil {
		serviceErr := errors.WrapRepositoryError(err, id, title)
		logger.LogTaskOperation(ctx, operation, id, duration, serviceErr, serviceErr.Expected())
		var zero T
		return zero, serviceErr
	}

	logger.LogTaskOperation(ctx, operation, id, duration, nil, false)
	return result, nil
}
