package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Raisondetr3/todo-service/internal/model"
)

// MemoryStore is a process-local task store for development and tests. It
// implements Transactor and HealthRepository. Read-write transactions work on a
// private copy of the state that replaces the shared one only on commit, so a
// failed unit of work leaves nothing behind.
type MemoryStore struct {
	mu    sync.RWMutex
	state *memoryState
	now   func() time.Time
}

type memoryState struct {
	tasks  map[int64]*model.Task
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: &memoryState{tasks: make(map[int64]*model.Task), nextID: 1},
		now:   time.Now,
	}
}

func (s *MemoryStore) ReadOnly(ctx context.Context, fn func(TaskRepository) error) error {
	if err := ctx.Err(); err != nil {
		return WrapError("begin_read_only", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&memoryRepository{state: s.state, now: s.now, readOnly: true})
}

func (s *MemoryStore) ReadWrite(ctx context.Context, fn func(TaskRepository) error) error {
	if err := ctx.Err(); err != nil {
		return WrapError("begin_read_write", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(&memoryRepository{state: working, now: s.now}); err != nil {
		return err
	}

	s.state = working
	return nil
}

func (s *MemoryStore) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}

func (st *memoryState) clone() *memoryState {
	c := &memoryState{
		tasks:  make(map[int64]*model.Task, len(st.tasks)),
		nextID: st.nextID,
	}
	for id, t := range st.tasks {
		c.tasks[id] = t.Clone()
	}
	return c
}

type memoryRepository struct {
	state    *memoryState
	now      func() time.Time
	readOnly bool
}

func (r *memoryRepository) FindAll(ctx context.Context) ([]*model.Task, error) {
	return r.filter(func(*model.Task) bool { return true }), nil
}

func (r *memoryRepository) FindByID(ctx context.Context, id int64) (*model.Task, error) {
	t, ok := r.state.tasks[id]
	if !ok {
		return nil, WrapError("find_task_by_id", ErrTaskNotFound)
	}
	return t.Clone(), nil
}

func (r *memoryRepository) FindByCompleted(ctx context.Context, completed bool) ([]*model.Task, error) {
	return r.filter(func(t *model.Task) bool { return t.Completed == completed }), nil
}

func (r *memoryRepository) FindByTitleContaining(ctx context.Context, text string) ([]*model.Task, error) {
	return r.filter(func(t *model.Task) bool { return containsFold(t.Title, text) }), nil
}

func (r *memoryRepository) FindByCompletedAndTitleContaining(ctx context.Context, completed bool, text string) ([]*model.Task, error) {
	return r.filter(func(t *model.Task) bool {
		return t.Completed == completed && containsFold(t.Title, text)
	}), nil
}

func (r *memoryRepository) SearchByKeyword(ctx context.Context, keyword string) ([]*model.Task, error) {
	return r.filter(func(t *model.Task) bool {
		if containsFold(t.Title, keyword) {
			return true
		}
		return t.Description != nil && containsFold(*t.Description, keyword)
	}), nil
}

func (r *memoryRepository) FindRecent(ctx context.Context, limit int) ([]*model.Task, error) {
	tasks := r.filter(func(*model.Task) bool { return true })
	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID > tasks[j].ID
	})
	if limit >= 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

func (r *memoryRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	_, ok := r.findByTitle(title)
	return ok, nil
}

func (r *memoryRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	_, ok := r.state.tasks[id]
	return ok, nil
}

func (r *memoryRepository) CountByCompleted(ctx context.Context, completed bool) (int64, error) {
	var n int64
	for _, t := range r.state.tasks {
		if t.Completed == completed {
			n++
		}
	}
	return n, nil
}

func (r *memoryRepository) Save(ctx context.Context, task *model.Task) (*model.Task, error) {
	if task.IsNew() {
		return r.insert(task)
	}
	return r.update(task)
}

func (r *memoryRepository) insert(task *model.Task) (*model.Task, error) {
	if r.readOnly {
		return nil, WrapError("insert_task", ErrReadOnlyTransaction)
	}

	stored := task.Clone()
	stored.ID = r.state.nextID
	stored.CreatedAt = r.now()
	stored.UpdatedAt = stored.CreatedAt

	r.state.nextID++
	r.state.tasks[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *memoryRepository) update(task *model.Task) (*model.Task, error) {
	if r.readOnly {
		return nil, WrapError("update_task", ErrReadOnlyTransaction)
	}
	existing, ok := r.state.tasks[task.ID]
	if !ok {
		return nil, WrapError("update_task", ErrTaskNotFound)
	}
	c := task.Clone()
	existing.Replace(c.Title, c.Description, c.Completed)
	existing.UpdatedAt = r.nextUpdatedAt(existing.UpdatedAt)
	return existing.Clone(), nil
}

func (r *memoryRepository) ToggleCompleted(ctx context.Context, id int64) (*model.Task, error) {
	if r.readOnly {
		return nil, WrapError("toggle_task", ErrReadOnlyTransaction)
	}
	existing, ok := r.state.tasks[id]
	if !ok {
		return nil, WrapError("toggle_task", ErrTaskNotFound)
	}

	existing.Toggle()
	existing.UpdatedAt = r.nextUpdatedAt(existing.UpdatedAt)
	return existing.Clone(), nil
}

func (r *memoryRepository) DeleteByID(ctx context.Context, id int64) error {
	if r.readOnly {
		return WrapError("delete_task", ErrReadOnlyTransaction)
	}
	if _, ok := r.state.tasks[id]; !ok {
		return WrapError("delete_task", ErrTaskNotFound)
	}
	delete(r.state.tasks, id)
	return nil
}

// LockTitle is a no-op: writers already hold the store's exclusive lock.
func (r *memoryRepository) LockTitle(ctx context.Context, title string) error {
	return nil
}

func (r *memoryRepository) nextUpdatedAt(prev time.Time) time.Time {
	ts := r.now()
	if !ts.After(prev) {
		ts = prev.Add(time.Microsecond)
	}
	return ts
}

func (r *memoryRepository) findByTitle(title string) (*model.Task, bool) {
	for _, t := range r.state.tasks {
		if t.Title == title {
			return t, true
		}
	}
	return nil, false
}

// filter returns copies of the matching tasks ordered by id.
func (r *memoryRepository) filter(match func(*model.Task) bool) []*model.Task {
	tasks := make([]*model.Task, 0, len(r.state.tasks))
	for _, t := range r.state.tasks {
		if match(t) {
			tasks = append(tasks, t.Clone())
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
