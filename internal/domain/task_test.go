package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatus_IsTerminal(t *testing.T) {
	assert.True(t, TaskStatusCompleted.IsTerminal())
	assert.True(t, TaskStatusCancelled.IsTerminal())

	for _, s := range []TaskStatus{TaskStatusDraft, TaskStatusOpen, TaskStatusInProgress, TaskStatusOverdue} {
		assert.False(t, s.IsTerminal(), "status %s", s)
	}
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dueDate time.Time
		status  TaskStatus
		want    bool
	}{
		{"elapsed and open", now.Add(-time.Hour), TaskStatusOpen, true},
		{"elapsed and in progress", now.Add(-time.Minute), TaskStatusInProgress, true},
		{"elapsed but completed", now.Add(-time.Hour), TaskStatusCompleted, false},
		{"elapsed but cancelled", now.Add(-time.Hour), TaskStatusCancelled, false},
		{"due in the future", now.Add(time.Hour), TaskStatusOpen, false},
		{"due exactly now", now, TaskStatusOpen, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{DueDate: tt.dueDate, Status: tt.status}
			assert.Equal(t, tt.want, task.IsOverdue(now))
		})
	}
}
