package domain

import "time"

// TaskStatus represents the status of a task on the board.
type TaskStatus string

const (
	TaskStatusDraft      TaskStatus = "Draft"
	TaskStatusOpen       TaskStatus = "Open"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusCompleted  TaskStatus = "Completed"
	TaskStatusOverdue    TaskStatus = "Overdue"
	TaskStatusCancelled  TaskStatus = "Cancelled"
)

// IsTerminal returns true if the status excludes the task from due scanning.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

// IsValid checks if the status is one of the allowed values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusDraft, TaskStatusOpen, TaskStatusInProgress,
		TaskStatusCompleted, TaskStatusOverdue, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// TaskPriority represents the priority level of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

// IsValid checks if the priority is one of the allowed values.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

// Task represents a tracked unit of work with a due date.
//
// Version is an opaque token rewritten on every committed mutation; it is
// the concurrency control for all writes that go through the service.
// DueNotifiedAt is the due-scan claim marker: absent until a scanner claims
// the row, then set exactly once per claim.
type Task struct {
	ID            string
	Title         string
	Description   string
	DueDate       time.Time
	Priority      TaskPriority
	Status        TaskStatus
	OwnerID       string
	AssigneeID    *string
	ReminderSent  bool
	DueNotifiedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       []byte

	// Hydrated by the service layer for responses; not persisted columns.
	Owner    *User
	Assignee *User
}

// IsOverdue reports the computed overdue state: the due date has elapsed
// and the task is not in a terminal status.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate.Before(now) && !t.Status.IsTerminal()
}
