package work

import (
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DragSession captures the state between picking a card up and dropping it.
// The session is a value type so an abandoned drag leaves no trace.
type DragSession struct {
	TaskID     uuid.UUID
	FromStatus TaskStatus
	active     bool
}

// StatusChange is the single mutation a completed drag may produce
type StatusChange struct {
	TaskID uuid.UUID
	From   TaskStatus
	To     TaskStatus
}

// BeginDrag opens a drag session for a task
func BeginDrag(task *Task) (DragSession, error) {
	if task == nil {
		return DragSession{}, shared.NewDomainError("INVALID_DRAG", "No task to drag")
	}
	return DragSession{
		TaskID:     task.ID,
		FromStatus: task.Status,
		active:     true,
	}, nil
}

// CompleteDrag closes the session against a drop target.
// A nil target means the card was dropped outside every column.
// The returned change is nil whenever no mutation is required.
func (s DragSession) CompleteDrag(target *TaskStatus) (*StatusChange, error) {
	if !s.active {
		return nil, shared.NewDomainError("INVALID_DRAG", "Drag session was never started")
	}
	if target == nil {
		return nil, nil
	}
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_TASK_STATUS", "Unknown task status")
	}
	if *target == s.FromStatus {
		return nil, nil
	}
	return &StatusChange{
		TaskID: s.TaskID,
		From:   s.FromStatus,
		To:     *target,
	}, nil
}

// Active reports whether the session was opened via BeginDrag
func (s DragSession) Active() bool {
	return s.active
}

// GroupByStatus buckets tasks into board columns, preserving input order.
// Every column is present even when empty.
func GroupByStatus(tasks []TaskListItem) map[TaskStatus][]TaskListItem {
	columns := make(map[TaskStatus][]TaskListItem, len(BoardColumns()))
	for _, status := range BoardColumns() {
		columns[status] = []TaskListItem{}
	}
	for _, task := range tasks {
		if _, ok := columns[task.Status]; ok {
			columns[task.Status] = append(columns[task.Status], task)
		}
	}
	return columns
}
