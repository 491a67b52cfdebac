package dto

import "time"

// UserPayload carries user fields for explicit creation and for the embedded
// owner/assignee references on task creation (upsert-by-email).
type UserPayload struct {
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDateUTC  time.Time    `json:"dueDateUtc"`
	Priority    string       `json:"priority"`
	Status      string       `json:"status"`
	Owner       UserPayload  `json:"owner"`
	Assignee    *UserPayload `json:"assignee"`
}

// Validate reports missing required fields.
func (r *CreateTaskRequest) Validate() []FieldError {
	var details []FieldError
	if r.Title == "" {
		details = append(details, FieldError{Field: "title", Message: "title is required"})
	}
	if r.DueDateUTC.IsZero() {
		details = append(details, FieldError{Field: "dueDateUtc", Message: "dueDateUtc is required"})
	}
	if r.Owner.Email == "" {
		details = append(details, FieldError{Field: "owner.email", Message: "owner.email is required"})
	}
	if r.Assignee != nil && r.Assignee.Email == "" {
		details = append(details, FieldError{Field: "assignee.email", Message: "assignee.email is required"})
	}
	return details
}

// UpdateTaskRequest is the body of PUT /tasks/{id}. A nil assignedUserId
// leaves the assignee unchanged.
type UpdateTaskRequest struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	DueDateUTC     time.Time `json:"dueDateUtc"`
	Priority       string    `json:"priority"`
	Status         string    `json:"status"`
	AssignedUserID *string   `json:"assignedUserId"`
}

// Validate reports missing required fields.
func (r *UpdateTaskRequest) Validate() []FieldError {
	var details []FieldError
	if r.Title == "" {
		details = append(details, FieldError{Field: "title", Message: "title is required"})
	}
	if r.DueDateUTC.IsZero() {
		details = append(details, FieldError{Field: "dueDateUtc", Message: "dueDateUtc is required"})
	}
	return details
}

// UpdateStatusRequest is the body of PATCH /tasks/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateAssigneeRequest is the body of PATCH /tasks/{id}/assignee. A nil
// assignedUserId clears the assignee.
type UpdateAssigneeRequest struct {
	AssignedUserID *string `json:"assignedUserId"`
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest = UserPayload

// ValidateUser reports missing required fields on a user payload.
func ValidateUser(r UserPayload) []FieldError {
	var details []FieldError
	if r.FullName == "" {
		details = append(details, FieldError{Field: "fullName", Message: "fullName is required"})
	}
	if r.Email == "" {
		details = append(details, FieldError{Field: "email", Message: "email is required"})
	}
	return details
}
