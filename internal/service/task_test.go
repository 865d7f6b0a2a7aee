package service

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/Raisondetr3/todo-service/internal/errors"
	"github.com/Raisondetr3/todo-service/internal/model"
	"github.com/Raisondetr3/todo-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func newService(t *testing.T) (TaskService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewTaskService(store), store
}

func mustCreate(t *testing.T, svc TaskService, title string, description *string) *model.Task {
	t.Helper()
	task, err := svc.Create(context.Background(), model.NewTask(title, description))
	require.NoError(t, err)
	return task
}

func TestCreate_NewTaskIsPending(t *testing.T) {
	svc, _ := newService(t)

	candidate := model.NewTask("Buy milk", strPtr("2 liters"))
	candidate.Completed = true
	candidate.ID = 99

	task, err := svc.Create(context.Background(), candidate)
	require.NoError(t, err)

	assert.NotZero(t, task.ID)
	assert.NotEqual(t, int64(99), task.ID)
	assert.False(t, task.Completed)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "2 liters", *task.Description)
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
}

func TestCreate_DuplicateTitle(t *testing.T) {
	svc, _ := newService(t)
	mustCreate(t, svc, "Buy milk", nil)

	_, err := svc.Create(context.Background(), model.NewTask("Buy milk", strPtr("again")))
	require.Error(t, err)
	assert.True(t, errors.IsDuplicateError(err))
	assert.Equal(t, "Task with title 'Buy milk' already exists", errors.As(err).Message)

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreate_TitleMatchIsCaseSensitive(t *testing.T) {
	svc, _ := newService(t)
	mustCreate(t, svc, "Buy milk", nil)

	_, err := svc.Create(context.Background(), model.NewTask("buy milk", nil))
	assert.NoError(t, err)
}

func TestCreate_LocksTitleBeforeCheckingIt(t *testing.T) {
	tx := &recordingTransactor{Transactor: repository.NewMemoryStore()}
	svc := NewTaskService(tx)

	_, err := svc.Create(context.Background(), model.NewTask("Buy milk", nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"LockTitle:Buy milk", "ExistsByTitle:Buy milk", "Save"}, tx.calls)
}

func TestCreate_ConcurrentSameTitle(t *testing.T) {
	svc, _ := newService(t)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), model.NewTask("Only once", nil))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.IsDuplicateError(err))
	}
	assert.Equal(t, 1, succeeded)

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Get(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
	assert.Equal(t, "Task with id 42 not found", errors.As(err).Message)
}

func TestUpdate_ReplacesFields(t *testing.T) {
	svc, _ := newService(t)
	created := mustCreate(t, svc, "Write report", strPtr("draft"))

	updated, err := svc.Update(context.Background(), created.ID, &model.Task{
		Title:       "Write final report",
		Description: nil,
		Completed:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Write final report", updated.Title)
	assert.Nil(t, updated.Description)
	assert.True(t, updated.Completed)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdate_NotFoundLeavesStoreUntouched(t *testing.T) {
	svc, _ := newService(t)
	created := mustCreate(t, svc, "Existing", nil)

	_, err := svc.Update(context.Background(), created.ID+1, &model.Task{Title: "Other", Completed: true})
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Existing", all[0].Title)
	assert.False(t, all[0].Completed)
}

func TestUpdate_TitleOfAnotherTaskIsAccepted(t *testing.T) {
	svc, _ := newService(t)
	first := mustCreate(t, svc, "First task", nil)
	second := mustCreate(t, svc, "Second task", nil)

	updated, err := svc.Update(context.Background(), second.ID, &model.Task{Title: "First task"})
	require.NoError(t, err)
	assert.Equal(t, second.ID, updated.ID)
	assert.Equal(t, "First task", updated.Title)

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, "First task", all[0].Title)
	assert.Equal(t, "First task", all[1].Title)

	// Creation still enforces uniqueness.
	_, err = svc.Create(context.Background(), model.NewTask("First task", nil))
	assert.True(t, errors.IsDuplicateError(err))
}

func TestUpdate_KeepingOwnTitle(t *testing.T) {
	svc, _ := newService(t)
	created := mustCreate(t, svc, "Same title", nil)

	updated, err := svc.Update(context.Background(), created.ID, &model.Task{Title: "Same title", Completed: true})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
}

func TestToggleCompletion_TwiceRestores(t *testing.T) {
	svc, _ := newService(t)
	created := mustCreate(t, svc, "Toggle me", nil)

	first, err := svc.ToggleCompletion(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, first.Completed)

	second, err := svc.ToggleCompletion(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, second.Completed)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	_, err = svc.ToggleCompletion(context.Background(), created.ID+100)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestDelete(t *testing.T) {
	svc, _ := newService(t)
	created := mustCreate(t, svc, "Delete me", nil)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err := svc.Get(context.Background(), created.ID)
	assert.True(t, errors.IsNotFoundError(err))

	err = svc.Delete(context.Background(), created.ID)
	assert.True(t, errors.IsNotFoundError(err))
	assert.Equal(t, "Task with id 1 not found", errors.As(err).Message)
}

func TestCountsAndStats(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	a := mustCreate(t, svc, "Task A", nil)
	mustCreate(t, svc, "Task B", nil)
	mustCreate(t, svc, "Task C", nil)
	_, err := svc.ToggleCompletion(ctx, a.ID)
	require.NoError(t, err)

	completed, err := svc.CountCompleted(ctx)
	require.NoError(t, err)
	pending, err := svc.CountPending(ctx)
	require.NoError(t, err)
	all, err := svc.ListAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), completed)
	assert.Equal(t, int64(2), pending)
	assert.Equal(t, int64(len(all)), completed+pending)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Stats{Completed: 1, Pending: 2}, stats)
	assert.Equal(t, int64(3), stats.Total())
}

func TestSearchAndFilter(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	milk := mustCreate(t, svc, "Buy Milk", nil)
	mustCreate(t, svc, "Call mom", strPtr("ask about the MILK recipe"))
	mustCreate(t, svc, "Pay bills", nil)
	_, err := svc.ToggleCompletion(ctx, milk.ID)
	require.NoError(t, err)

	byKeyword, err := svc.SearchByKeyword(ctx, "milk")
	require.NoError(t, err)
	assert.Len(t, byKeyword, 2)

	byTitle, err := svc.SearchByTitle(ctx, "milk")
	require.NoError(t, err)
	assert.Len(t, byTitle, 1)

	done, err := svc.ListByCompletion(ctx, true)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, milk.ID, done[0].ID)

	tests := []struct {
		name      string
		completed *bool
		title     string
		want      int
	}{
		{name: "no filters", want: 3},
		{name: "completed only", completed: boolPtr(false), want: 2},
		{name: "title only", title: "BILLS", want: 1},
		{name: "both", completed: boolPtr(true), title: "buy", want: 1},
		{name: "both without match", completed: boolPtr(false), title: "buy", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Filter(ctx, tt.completed, tt.title)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestRecent_LimitsToTen(t *testing.T) {
	svc, _ := newService(t)
	for _, title := range []string{
		"Task 01", "Task 02", "Task 03", "Task 04", "Task 05", "Task 06",
		"Task 07", "Task 08", "Task 09", "Task 10", "Task 11", "Task 12",
	} {
		mustCreate(t, svc, title, nil)
	}

	recent, err := svc.Recent(context.Background())
	require.NoError(t, err)
	require.Len(t, recent, RecentLimit)
	assert.Equal(t, "Task 12", recent[0].Title)
}

// recordingTransactor records the repository calls made during Create.
type recordingTransactor struct {
	repository.Transactor
	calls []string
}

func (r *recordingTransactor) ReadWrite(ctx context.Context, fn func(repository.TaskRepository) error) error {
	return r.Transactor.ReadWrite(ctx, func(repo repository.TaskRepository) error {
		return fn(recordingRepository{TaskRepository: repo, calls: &r.calls})
	})
}

type recordingRepository struct {
	repository.TaskRepository
	calls *[]string
}

func (r recordingRepository) LockTitle(ctx context.Context, title string) error {
	*r.calls = append(*r.calls, "LockTitle:"+title)
	return r.TaskRepository.LockTitle(ctx, title)
}

func (r recordingRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	*r.calls = append(*r.calls, "ExistsByTitle:"+title)
	return r.TaskRepository.ExistsByTitle(ctx, title)
}

func (r recordingRepository) Save(ctx context.Context, task *model.Task) (*model.Task, error) {
	*r.calls = append(*r.calls, "Save")
	return r.TaskRepository.Save(ctx, task)
}

type mockTransactor struct {
	mock.Mock
}

func (m *mockTransactor) ReadOnly(ctx context.Context, fn func(repository.TaskRepository) error) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockTransactor) ReadWrite(ctx context.Context, fn func(repository.TaskRepository) error) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestStoreFailureIsInternal(t *testing.T) {
	tx := new(mockTransactor)
	dbErr := repository.WrapError("begin_read_only", repository.ErrDatabaseConnection)
	tx.On("ReadOnly", mock.Anything).Return(dbErr)
	tx.On("ReadWrite", mock.Anything).Return(dbErr)

	svc := NewTaskService(tx)

	_, err := svc.ListAll(context.Background())
	serviceErr := errors.As(err)
	assert.Equal(t, errors.KindInternal, serviceErr.Kind)
	assert.Equal(t, "An unexpected error occurred", serviceErr.Message)
	assert.True(t, stderrors.Is(err, repository.ErrDatabaseConnection))

	_, err = svc.Create(context.Background(), model.NewTask("whatever", nil))
	assert.Equal(t, errors.KindInternal, errors.As(err).Kind)

	_, err = svc.Stats(context.Background())
	assert.Error(t, err)

	tx.AssertExpectations(t)
}

type stubHealthRepo struct {
	err error
}

func (s stubHealthRepo) HealthCheck(context.Context) error { return s.err }

func TestHealth(t *testing.T) {
	healthy, err := NewHealthService(stubHealthRepo{}).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusHealthy, healthy.Status)
	assert.Equal(t, StatusHealthy, healthy.Checks["database"])

	unhealthy, err := NewHealthService(stubHealthRepo{err: stderrors.New("down")}).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusUnhealthy, unhealthy.Status)
}
