package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/work"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
)

// Real-query tests against an in-memory sqlite database; the sqlmock
// tests cover SQL shape, these cover end-to-end row mapping and joins.
func setupTaskTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.UserModel{},
		&models.ProjectModel{},
		&models.TaskModel{},
	))
	return db
}

func newPersistedTask(t *testing.T, repo *GormTaskRepository, title string, status work.TaskStatus) *work.Task {
	t.Helper()

	task, err := work.NewTask(title, work.PriorityMedium)
	require.NoError(t, err)
	if status != work.TaskTodo {
		require.NoError(t, task.MoveToStatus(status))
	}
	require.NoError(t, repo.Save(context.Background(), task))
	return task
}

func TestGormTaskRepositorySQLiteRoundTrip(t *testing.T) {
	db := setupTaskTestDB(t)
	repo := NewGormTaskRepository(db)
	ctx := context.Background()

	task, err := work.NewTask("Prepare quarterly review", work.PriorityHigh)
	require.NoError(t, err)
	task.Tags = []string{"finance", "q3"}
	require.NoError(t, repo.Save(ctx, task))

	found, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Prepare quarterly review", found.Title)
	assert.Equal(t, work.PriorityHigh, found.Priority)
	assert.Equal(t, work.TaskTodo, found.Status)
	assert.Equal(t, []string{"finance", "q3"}, found.Tags)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormTaskRepositorySQLiteOptimisticLock(t *testing.T) {
	db := setupTaskTestDB(t)
	repo := NewGormTaskRepository(db)
	ctx := context.Background()

	task := newPersistedTask(t, repo, "Call the client", work.TaskTodo)

	loaded, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	loadedVersion := loaded.Version

	require.NoError(t, loaded.MoveToStatus(work.TaskInProgress))
	require.NoError(t, repo.SaveWithLock(ctx, loaded, loadedVersion))

	// A writer holding the stale version loses
	stale, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	require.NoError(t, stale.MoveToStatus(work.TaskDone))
	err = repo.SaveWithLock(ctx, stale, loadedVersion)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestGormTaskRepositorySQLiteClearsOptionalFields(t *testing.T) {
	db := setupTaskTestDB(t)
	repo := NewGormTaskRepository(db)
	ctx := context.Background()

	task, err := work.NewTask("Write onboarding doc", work.PriorityMedium)
	require.NoError(t, err)
	description := "first draft"
	task.SetDescription(&description)
	due := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	task.SetDueDate(&due)
	require.NoError(t, repo.Save(ctx, task))

	loaded, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Description)
	loadedVersion := loaded.Version

	loaded.SetDescription(nil)
	loaded.SetDueDate(nil)
	require.NoError(t, repo.SaveWithLock(ctx, loaded, loadedVersion))

	found, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, found.Description)
	assert.Nil(t, found.DueDate)
}

func TestGormTaskRepositorySQLiteProjectJoin(t *testing.T) {
	db := setupTaskTestDB(t)
	repo := NewGormTaskRepository(db)
	ctx := context.Background()

	project, err := work.NewProject("Website relaunch", work.PriorityMedium)
	require.NoError(t, err)
	require.NoError(t, db.Save(models.ProjectModelFromDomain(project)).Error)

	task := newPersistedTask(t, repo, "Draft landing page", work.TaskTodo)
	task.ProjectID = &project.ID
	require.NoError(t, repo.Save(ctx, task))

	newPersistedTask(t, repo, "Unrelated chore", work.TaskTodo)

	items, err := repo.FindByProject(ctx, project.ID, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Draft landing page", items[0].Title)
	require.NotNil(t, items[0].ProjectName)
	assert.Equal(t, "Website relaunch", *items[0].ProjectName)
}

func TestGormTaskRepositorySQLiteCountByStatus(t *testing.T) {
	db := setupTaskTestDB(t)
	repo := NewGormTaskRepository(db)
	ctx := context.Background()

	newPersistedTask(t, repo, "One", work.TaskTodo)
	newPersistedTask(t, repo, "Two", work.TaskInProgress)
	newPersistedTask(t, repo, "Three", work.TaskInProgress)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[work.TaskTodo])
	assert.Equal(t, int64(2), counts[work.TaskInProgress])
	// Empty columns still show up
	assert.Equal(t, int64(0), counts[work.TaskReview])
	assert.Equal(t, int64(0), counts[work.TaskDone])
}

func TestGormTaskRepositorySQLiteDelete(t *testing.T) {
	db := setupTaskTestDB(t)
	repo := NewGormTaskRepository(db)
	ctx := context.Background()

	task := newPersistedTask(t, repo, "Throwaway", work.TaskTodo)
	require.NoError(t, repo.Delete(ctx, task.ID))

	err := repo.Delete(ctx, task.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
