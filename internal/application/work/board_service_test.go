package work

import (
	"context"
	"testing"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/work"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskRepository is a mock implementation of TaskRepository
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*work.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*work.Task), args.Error(1)
}

func (m *MockTaskRepository) FindAll(ctx context.Context, filter shared.Filter) ([]work.TaskListItem, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]work.TaskListItem), args.Error(1)
}

func (m *MockTaskRepository) FindByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]work.TaskListItem, error) {
	args := m.Called(ctx, projectID, filter)
	return args.Get(0).([]work.TaskListItem), args.Error(1)
}

func (m *MockTaskRepository) Save(ctx context.Context, task *work.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) SaveWithLock(ctx context.Context, task *work.Task, expectedVersion int) error {
	args := m.Called(ctx, task, expectedVersion)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) CountByStatus(ctx context.Context) (map[work.TaskStatus]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[work.TaskStatus]int64), args.Error(1)
}

func newBoardService(repo *MockTaskRepository) *BoardService {
	return NewBoardService(repo, cache.PassthroughCache{}, cache.NopInvalidator{}, nil)
}

func newBoardTask(t *testing.T, status work.TaskStatus) *work.Task {
	t.Helper()
	task, err := work.NewTask("Draft wireframes", work.PriorityHigh)
	require.NoError(t, err)
	if status != work.TaskTodo {
		require.NoError(t, task.MoveToStatus(status))
	}
	return task
}

func TestBoardService_GetBoard(t *testing.T) {
	t.Run("returns every column even when empty", func(t *testing.T) {
		repo := new(MockTaskRepository)
		service := newBoardService(repo)

		todo := newBoardTask(t, work.TaskTodo)
		done := newBoardTask(t, work.TaskDone)
		repo.On("FindAll", mock.Anything, mock.Anything).Return([]work.TaskListItem{
			{Task: *todo},
			{Task: *done},
		}, nil)

		board, err := service.GetBoard(context.Background(), TaskListFilter{})

		require.NoError(t, err)
		require.Len(t, board.Columns, 4)
		assert.Len(t, board.Columns["todo"], 1)
		assert.Empty(t, board.Columns["in_progress"])
		assert.Empty(t, board.Columns["review"])
		assert.Len(t, board.Columns["done"], 1)
	})
}

func TestBoardService_MoveTask(t *testing.T) {
	t.Run("moves a task to another column with one write", func(t *testing.T) {
		repo := new(MockTaskRepository)
		service := newBoardService(repo)

		task := newBoardTask(t, work.TaskTodo)
		loadedVersion := task.Version

		repo.On("FindByID", mock.Anything, task.ID).Return(task, nil)
		repo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*work.Task"), loadedVersion).Return(nil)

		status := "in_progress"
		response, err := service.MoveTask(context.Background(), task.ID, MoveTaskRequest{Status: &status})

		require.NoError(t, err)
		assert.Equal(t, "in_progress", response.Status)
		repo.AssertNumberOfCalls(t, "SaveWithLock", 1)
	})

	t.Run("drop outside any column changes nothing", func(t *testing.T) {
		repo := new(MockTaskRepository)
		service := newBoardService(repo)

		task := newBoardTask(t, work.TaskReview)
		repo.On("FindByID", mock.Anything, task.ID).Return(task, nil)

		response, err := service.MoveTask(context.Background(), task.ID, MoveTaskRequest{Status: nil})

		require.NoError(t, err)
		assert.Equal(t, "review", response.Status)
		repo.AssertNotCalled(t, "SaveWithLock")
		repo.AssertNotCalled(t, "Save")
	})

	t.Run("drop onto the source column changes nothing", func(t *testing.T) {
		repo := new(MockTaskRepository)
		service := newBoardService(repo)

		task := newBoardTask(t, work.TaskInProgress)
		repo.On("FindByID", mock.Anything, task.ID).Return(task, nil)

		status := "in_progress"
		response, err := service.MoveTask(context.Background(), task.ID, MoveTaskRequest{Status: &status})

		require.NoError(t, err)
		assert.Equal(t, "in_progress", response.Status)
		repo.AssertNotCalled(t, "SaveWithLock")
	})

	t.Run("rejects an unknown column", func(t *testing.T) {
		repo := new(MockTaskRepository)
		service := newBoardService(repo)

		task := newBoardTask(t, work.TaskTodo)
		repo.On("FindByID", mock.Anything, task.ID).Return(task, nil)

		status := "archived"
		_, err := service.MoveTask(context.Background(), task.ID, MoveTaskRequest{Status: &status})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TASK_STATUS", domainErr.Code)
		repo.AssertNotCalled(t, "SaveWithLock")
	})

	t.Run("propagates concurrency conflicts", func(t *testing.T) {
		repo := new(MockTaskRepository)
		service := newBoardService(repo)

		task := newBoardTask(t, work.TaskTodo)
		repo.On("FindByID", mock.Anything, task.ID).Return(task, nil)
		repo.On("SaveWithLock", mock.Anything, mock.Anything, mock.Anything).Return(shared.ErrConcurrencyConflict)

		status := "done"
		_, err := service.MoveTask(context.Background(), task.ID, MoveTaskRequest{Status: &status})

		assert.Equal(t, shared.ErrConcurrencyConflict, err)
	})
}
