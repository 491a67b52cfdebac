package dto

import (
	"time"

	"github.com/taskhive/taskhive/internal/domain"
)

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Telephone string    `json:"telephone"`
	CreatedAt time.Time `json:"createdAt"`
}

// TaskResponse represents a task in API responses. RowVersion is the opaque
// concurrency token clients must echo back in If-Match on writes.
type TaskResponse struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	DueDateUTC   time.Time     `json:"dueDateUtc"`
	Priority     string        `json:"priority"`
	Status       string        `json:"status"`
	IsOverdue    bool          `json:"isOverdue"`
	ReminderSent bool          `json:"reminderSent"`
	Owner        *UserResponse `json:"owner"`
	Assignee     *UserResponse `json:"assignee"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	RowVersion   string        `json:"rowVersion"`
}

// TaskPageResponse is the paged envelope for GET /tasks.
type TaskPageResponse struct {
	Items      []TaskResponse `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalItems int            `json:"totalItems"`
	TotalPages int            `json:"totalPages"`
}

// UserPageResponse is the paged envelope for GET /users.
type UserPageResponse struct {
	Items      []UserResponse `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalItems int            `json:"totalItems"`
	TotalPages int            `json:"totalPages"`
}

// HealthResponse is the readiness payload for GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ToUserResponse converts a domain user.
func ToUserResponse(user *domain.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		Telephone: user.Telephone,
		CreatedAt: user.CreatedAt,
	}
}

// ToTaskResponse converts a domain task, computing the overdue flag at now.
func ToTaskResponse(task *domain.Task, now time.Time) TaskResponse {
	return TaskResponse{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		DueDateUTC:   task.DueDate,
		Priority:     string(task.Priority),
		Status:       string(task.Status),
		IsOverdue:    task.IsOverdue(now),
		ReminderSent: task.ReminderSent,
		Owner:        ToUserResponse(task.Owner),
		Assignee:     ToUserResponse(task.Assignee),
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
		RowVersion:   domain.EncodeVersion(task.Version),
	}
}

// TotalPages computes the page count for a paged envelope.
func TotalPages(totalItems, pageSize int) int {
	if pageSize < 1 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}
