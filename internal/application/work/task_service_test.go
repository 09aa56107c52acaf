package work

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/work"
	"github.com/crm/backend/internal/infrastructure/cache"
)

func newTaskService(repo *MockTaskRepository) *TaskService {
	return NewTaskService(repo, cache.PassthroughCache{}, cache.NopInvalidator{}, nil)
}

func TestTaskService_Create(t *testing.T) {
	t.Run("defaults to a medium-priority todo task", func(t *testing.T) {
		repo := new(MockTaskRepository)
		service := newTaskService(repo)

		var saved *work.Task
		repo.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			saved = args.Get(1).(*work.Task)
		}).Return(nil)

		creator := uuid.New()
		response, err := service.Create(context.Background(), CreateTaskRequest{
			Title:     "Draft wireframes",
			CreatedBy: &creator,
			Tags:      []string{"design", "q3"},
		})

		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, work.TaskTodo, saved.Status)
		assert.Equal(t, work.PriorityMedium, saved.Priority)
		require.NotNil(t, saved.CreatedBy)
		assert.Equal(t, creator, *saved.CreatedBy)
		assert.Equal(t, []string{"design", "q3"}, saved.Tags)
		assert.Equal(t, "Draft wireframes", response.Title)
		assert.Equal(t, string(work.TaskTodo), response.Status)
	})

	t.Run("rejects a blank title without saving", func(t *testing.T) {
		repo := new(MockTaskRepository)
		service := newTaskService(repo)

		_, err := service.Create(context.Background(), CreateTaskRequest{Title: "   "})

		require.Error(t, err)
		var validationErr *shared.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Fields, "title")
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects negative estimated hours", func(t *testing.T) {
		repo := new(MockTaskRepository)
		service := newTaskService(repo)

		hours := -2.5
		_, err := service.Create(context.Background(), CreateTaskRequest{
			Title:          "Draft wireframes",
			EstimatedHours: &hours,
		})

		require.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestTaskService_Update(t *testing.T) {
	t.Run("passes the loaded version to the optimistic write", func(t *testing.T) {
		repo := new(MockTaskRepository)
		service := newTaskService(repo)

		existing := newBoardTask(t, work.TaskTodo)
		loadedVersion := existing.Version

		repo.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
		repo.On("SaveWithLock", mock.Anything, mock.Anything, loadedVersion).Return(nil)

		status := "in_progress"
		response, err := service.Update(context.Background(), existing.ID, UpdateTaskRequest{
			Status: &status,
		})

		require.NoError(t, err)
		assert.Equal(t, "in_progress", response.Status)
		repo.AssertExpectations(t)
	})

	t.Run("only touches the fields that were sent", func(t *testing.T) {
		repo := new(MockTaskRepository)
		service := newTaskService(repo)

		existing := newBoardTask(t, work.TaskTodo)
		due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
		existing.SetDueDate(&due)

		repo.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
		repo.On("SaveWithLock", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		title := "Polish wireframes"
		response, err := service.Update(context.Background(), existing.ID, UpdateTaskRequest{
			Title: &title,
		})

		require.NoError(t, err)
		assert.Equal(t, "Polish wireframes", response.Title)
		assert.Equal(t, string(work.TaskTodo), response.Status)
		assert.Equal(t, string(work.PriorityHigh), response.Priority)
		require.NotNil(t, response.DueDate)
		assert.True(t, due.Equal(*response.DueDate))
	})

	t.Run("merges hours with the stored values", func(t *testing.T) {
		repo := new(MockTaskRepository)
		service := newTaskService(repo)

		existing := newBoardTask(t, work.TaskInProgress)
		estimated := 8.0
		require.NoError(t, existing.SetHours(&estimated, nil))

		var saved *work.Task
		repo.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
		repo.On("SaveWithLock", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			saved = args.Get(1).(*work.Task)
		}).Return(nil)

		actual := 5.5
		_, err := service.Update(context.Background(), existing.ID, UpdateTaskRequest{
			ActualHours: &actual,
		})

		require.NoError(t, err)
		require.NotNil(t, saved.EstimatedHours)
		assert.Equal(t, 8.0, *saved.EstimatedHours)
		require.NotNil(t, saved.ActualHours)
		assert.Equal(t, 5.5, *saved.ActualHours)
	})

	t.Run("rejects an unknown status without writing", func(t *testing.T) {
		repo := new(MockTaskRepository)
		service := newTaskService(repo)

		existing := newBoardTask(t, work.TaskTodo)
		repo.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)

		status := "archived"
		_, err := service.Update(context.Background(), existing.ID, UpdateTaskRequest{
			Status: &status,
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TASK_STATUS", domainErr.Code)
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("surfaces a concurrent modification", func(t *testing.T) {
		repo := new(MockTaskRepository)
		service := newTaskService(repo)

		existing := newBoardTask(t, work.TaskTodo)
		repo.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
		repo.On("SaveWithLock", mock.Anything, mock.Anything, mock.Anything).Return(shared.ErrConcurrencyConflict)

		priority := "urgent"
		_, err := service.Update(context.Background(), existing.ID, UpdateTaskRequest{
			Priority: &priority,
		})

		require.Error(t, err)
		assert.Equal(t, shared.ErrConcurrencyConflict, err)
	})

	t.Run("returns not found for an unknown task", func(t *testing.T) {
		repo := new(MockTaskRepository)
		service := newTaskService(repo)

		taskID := uuid.New()
		repo.On("FindByID", mock.Anything, taskID).Return(nil, shared.ErrNotFound)

		title := "Polish wireframes"
		_, err := service.Update(context.Background(), taskID, UpdateTaskRequest{Title: &title})

		require.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestTaskService_Delete(t *testing.T) {
	t.Run("removes an existing task", func(t *testing.T) {
		repo := new(MockTaskRepository)
		service := newTaskService(repo)

		taskID := uuid.New()
		repo.On("Delete", mock.Anything, taskID).Return(nil)

		require.NoError(t, service.Delete(context.Background(), taskID))
		repo.AssertExpectations(t)
	})

	t.Run("propagates not found", func(t *testing.T) {
		repo := new(MockTaskRepository)
		service := newTaskService(repo)

		taskID := uuid.New()
		repo.On("Delete", mock.Anything, taskID).Return(shared.ErrNotFound)

		require.ErrorIs(t, service.Delete(context.Background(), taskID), shared.ErrNotFound)
	})
}
