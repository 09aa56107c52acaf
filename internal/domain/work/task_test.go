package work

import (
	"errors"
	"testing"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	t.Run("creates task in the todo column", func(t *testing.T) {
		task, err := NewTask("Draft proposal", PriorityHigh)
		require.NoError(t, err)

		assert.Equal(t, TaskTodo, task.Status)
		assert.Equal(t, PriorityHigh, task.Priority)
		assert.NotNil(t, task.Tags)
		assert.Empty(t, task.Tags)
	})

	t.Run("rejects blank title", func(t *testing.T) {
		_, err := NewTask("   ", PriorityLow)
		require.Error(t, err)

		var verr *shared.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "title")
	})

	t.Run("rejects unknown priority", func(t *testing.T) {
		_, err := NewTask("Draft proposal", "critical")
		require.Error(t, err)
	})
}

func TestTaskMutations(t *testing.T) {
	newTask := func(t *testing.T) *Task {
		task, err := NewTask("Draft proposal", PriorityMedium)
		require.NoError(t, err)
		task.ClearDomainEvents()
		return task
	}

	t.Run("status move raises an event and bumps version", func(t *testing.T) {
		task := newTask(t)
		before := task.Version

		require.NoError(t, task.MoveToStatus(TaskInProgress))
		assert.Equal(t, TaskInProgress, task.Status)
		assert.Equal(t, before+1, task.Version)
		require.Len(t, task.GetDomainEvents(), 1)
		assert.Equal(t, EventTaskStatusChanged, task.GetDomainEvents()[0].EventType())
	})

	t.Run("move to the current status raises no event", func(t *testing.T) {
		task := newTask(t)
		require.NoError(t, task.MoveToStatus(TaskTodo))
		assert.Empty(t, task.GetDomainEvents())
	})

	t.Run("tags are trimmed and blanks dropped", func(t *testing.T) {
		task := newTask(t)
		task.SetTags([]string{" design ", "", "  ", "q3"})
		assert.Equal(t, []string{"design", "q3"}, task.Tags)
	})

	t.Run("negative hours are rejected per field", func(t *testing.T) {
		task := newTask(t)
		bad := -2.0
		err := task.SetHours(&bad, nil)
		require.Error(t, err)

		var verr *shared.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "estimated_hours")
	})

	t.Run("project attachment accepts nil to detach", func(t *testing.T) {
		task := newTask(t)
		projectID := uuid.New()
		task.AttachToProject(&projectID)
		require.NotNil(t, task.ProjectID)

		task.AttachToProject(nil)
		assert.Nil(t, task.ProjectID)
	})

	t.Run("due date can be cleared", func(t *testing.T) {
		task := newTask(t)
		due := time.Now().Add(48 * time.Hour)
		task.SetDueDate(&due)
		require.NotNil(t, task.DueDate)

		task.SetDueDate(nil)
		assert.Nil(t, task.DueDate)
	})
}

func TestProjectValidation(t *testing.T) {
	t.Run("progress is clamped to the valid range by rejection", func(t *testing.T) {
		project, err := NewProject("Website relaunch", PriorityHigh)
		require.NoError(t, err)

		require.Error(t, project.SetProgress(101))
		require.Error(t, project.SetProgress(-1))
		require.NoError(t, project.SetProgress(55))
		assert.Equal(t, 55, project.Progress)
	})

	t.Run("completion forces progress to 100", func(t *testing.T) {
		project, err := NewProject("Website relaunch", PriorityHigh)
		require.NoError(t, err)

		require.NoError(t, project.ChangeStatus(ProjectCompleted))
		assert.Equal(t, 100, project.Progress)
	})

	t.Run("due date before start date is rejected", func(t *testing.T) {
		project, err := NewProject("Website relaunch", PriorityHigh)
		require.NoError(t, err)

		start := time.Now()
		due := start.Add(-24 * time.Hour)
		require.Error(t, project.SetSchedule(&start, &due))
	})
}
