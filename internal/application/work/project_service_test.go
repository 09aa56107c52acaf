package work

import (
	"context"
	"testing"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/work"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProjectRepository is a mock implementation of ProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*work.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*work.Project), args.Error(1)
}

func (m *MockProjectRepository) FindAll(ctx context.Context, filter shared.Filter) ([]work.ProjectListItem, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]work.ProjectListItem), args.Error(1)
}

func (m *MockProjectRepository) Save(ctx context.Context, project *work.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) SaveWithLock(ctx context.Context, project *work.Project, expectedVersion int) error {
	args := m.Called(ctx, project, expectedVersion)
	return args.Error(0)
}

func (m *MockProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProjectRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func newProjectService(repo *MockProjectRepository) *ProjectService {
	return NewProjectService(repo, cache.PassthroughCache{}, cache.NopInvalidator{}, nil)
}

func TestProjectService_Create(t *testing.T) {
	t.Run("defaults to medium priority in planning", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := newProjectService(repo)

		repo.On("Save", mock.Anything, mock.AnythingOfType("*work.Project")).Return(nil)

		response, err := service.Create(context.Background(), CreateProjectRequest{
			Name: "Website relaunch",
		})

		require.NoError(t, err)
		assert.Equal(t, "planning", response.Status)
		assert.Equal(t, "medium", response.Priority)
		assert.Equal(t, 0, response.Progress)
	})

	t.Run("rejects a due date before the start date", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := newProjectService(repo)

		start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		due := start.AddDate(0, 0, -7)

		_, err := service.Create(context.Background(), CreateProjectRequest{
			Name:      "Website relaunch",
			StartDate: &start,
			DueDate:   &due,
		})

		require.Error(t, err)
		var validationErr *shared.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Fields, "due_date")
		repo.AssertNotCalled(t, "Save")
	})

	t.Run("rejects a negative budget", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := newProjectService(repo)

		budget := decimal.NewFromInt(-500)
		_, err := service.Create(context.Background(), CreateProjectRequest{
			Name:   "Website relaunch",
			Budget: &budget,
		})

		require.Error(t, err)
		var validationErr *shared.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Fields, "budget")
		repo.AssertNotCalled(t, "Save")
	})
}

func TestProjectService_Update(t *testing.T) {
	newStoredProject := func(t *testing.T) *work.Project {
		t.Helper()
		project, err := work.NewProject("Website relaunch", work.PriorityMedium)
		require.NoError(t, err)
		return project
	}

	t.Run("applies only provided fields with the loaded version", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := newProjectService(repo)

		project := newStoredProject(t)
		loadedVersion := project.Version

		repo.On("FindByID", mock.Anything, project.ID).Return(project, nil)
		repo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*work.Project"), loadedVersion).Return(nil)

		status := "active"
		progress := 35
		response, err := service.Update(context.Background(), project.ID, UpdateProjectRequest{
			Status:   &status,
			Progress: &progress,
		})

		require.NoError(t, err)
		assert.Equal(t, "active", response.Status)
		assert.Equal(t, 35, response.Progress)
		assert.Equal(t, "Website relaunch", response.Name)
		assert.Equal(t, "medium", response.Priority)
	})

	t.Run("keeps the stored schedule when only one bound is sent", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := newProjectService(repo)

		project := newStoredProject(t)
		start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		due := start.AddDate(0, 2, 0)
		require.NoError(t, project.SetSchedule(&start, &due))

		repo.On("FindByID", mock.Anything, project.ID).Return(project, nil)
		repo.On("SaveWithLock", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		newDue := start.AddDate(0, 3, 0)
		response, err := service.Update(context.Background(), project.ID, UpdateProjectRequest{
			DueDate: &newDue,
		})

		require.NoError(t, err)
		require.NotNil(t, response.StartDate)
		assert.True(t, response.StartDate.Equal(start))
		require.NotNil(t, response.DueDate)
		assert.True(t, response.DueDate.Equal(newDue))
	})

	t.Run("propagates concurrency conflicts", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := newProjectService(repo)

		project := newStoredProject(t)
		repo.On("FindByID", mock.Anything, project.ID).Return(project, nil)
		repo.On("SaveWithLock", mock.Anything, mock.Anything, mock.Anything).Return(shared.ErrConcurrencyConflict)

		name := "Website relaunch v2"
		_, err := service.Update(context.Background(), project.ID, UpdateProjectRequest{Name: &name})

		assert.Equal(t, shared.ErrConcurrencyConflict, err)
	})
}

func TestProjectService_Delete(t *testing.T) {
	t.Run("propagates not found", func(t *testing.T) {
		repo := new(MockProjectRepository)
		service := newProjectService(repo)

		projectID := uuid.New()
		repo.On("Delete", mock.Anything, projectID).Return(shared.ErrNotFound)

		err := service.Delete(context.Background(), projectID)

		assert.Equal(t, shared.ErrNotFound, err)
	})
}
