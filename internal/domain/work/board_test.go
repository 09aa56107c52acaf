package work

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDragSession(t *testing.T) {
	newTask := func(t *testing.T, status TaskStatus) *Task {
		task, err := NewTask("Ship release notes", PriorityMedium)
		require.NoError(t, err)
		require.NoError(t, task.MoveToStatus(status))
		return task
	}

	t.Run("drop on a different column yields exactly one change", func(t *testing.T) {
		task := newTask(t, TaskTodo)
		session, err := BeginDrag(task)
		require.NoError(t, err)

		target := TaskDone
		change, err := session.CompleteDrag(&target)
		require.NoError(t, err)

		require.NotNil(t, change)
		assert.Equal(t, task.ID, change.TaskID)
		assert.Equal(t, TaskTodo, change.From)
		assert.Equal(t, TaskDone, change.To)
	})

	t.Run("drop on the same column yields no change", func(t *testing.T) {
		task := newTask(t, TaskReview)
		session, err := BeginDrag(task)
		require.NoError(t, err)

		target := TaskReview
		change, err := session.CompleteDrag(&target)
		require.NoError(t, err)
		assert.Nil(t, change)
	})

	t.Run("drop outside every column yields no change", func(t *testing.T) {
		task := newTask(t, TaskInProgress)
		session, err := BeginDrag(task)
		require.NoError(t, err)

		change, err := session.CompleteDrag(nil)
		require.NoError(t, err)
		assert.Nil(t, change)
	})

	t.Run("drag of nil task is rejected", func(t *testing.T) {
		_, err := BeginDrag(nil)
		require.Error(t, err)
	})

	t.Run("completing a never-started session is rejected", func(t *testing.T) {
		var session DragSession
		target := TaskDone
		_, err := session.CompleteDrag(&target)
		require.Error(t, err)
	})

	t.Run("unknown target column is rejected", func(t *testing.T) {
		task := newTask(t, TaskTodo)
		session, err := BeginDrag(task)
		require.NoError(t, err)

		target := TaskStatus("archived")
		_, err = session.CompleteDrag(&target)
		require.Error(t, err)
	})
}

func TestGroupByStatus(t *testing.T) {
	mustTask := func(t *testing.T, title string, status TaskStatus) TaskListItem {
		task, err := NewTask(title, PriorityLow)
		require.NoError(t, err)
		require.NoError(t, task.MoveToStatus(status))
		return TaskListItem{Task: *task}
	}

	t.Run("buckets tasks per column preserving order", func(t *testing.T) {
		items := []TaskListItem{
			mustTask(t, "first", TaskTodo),
			mustTask(t, "second", TaskDone),
			mustTask(t, "third", TaskTodo),
		}

		columns := GroupByStatus(items)
		require.Len(t, columns[TaskTodo], 2)
		assert.Equal(t, "first", columns[TaskTodo][0].Title)
		assert.Equal(t, "third", columns[TaskTodo][1].Title)
		assert.Len(t, columns[TaskDone], 1)
	})

	t.Run("empty columns are still present", func(t *testing.T) {
		columns := GroupByStatus(nil)
		for _, status := range BoardColumns() {
			col, ok := columns[status]
			assert.True(t, ok)
			assert.Empty(t, col)
		}
	})
}
