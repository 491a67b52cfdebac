package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/repository"
)

// TaskService owns the domain rules on top of the repositories: due-date
// validation, upsert-by-email for embedded user references, the overdue
// gate, and the computed Overdue status. All mutations commit through the
// repository's version-checked conditional write.
type TaskService struct {
	tasks *repository.TaskRepository
	users *repository.UserRepository
	now   func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks *repository.TaskRepository, users *repository.UserRepository) *TaskService {
	return &TaskService{
		tasks: tasks,
		users: users,
		now:   time.Now,
	}
}

// UserInput carries an embedded user reference for upsert-by-email.
type UserInput struct {
	FullName  string
	Email     string
	Telephone string
}

// CreateTaskParams holds the input for CreateTask.
type CreateTaskParams struct {
	Title       string
	Description string
	DueDate     time.Time
	Priority    domain.TaskPriority // empty means Medium
	Status      domain.TaskStatus   // empty means Open
	Owner       UserInput
	Assignee    *UserInput // nil means the owner is also the assignee
}

// UpdateTaskParams holds the input for UpdateTask. AssignedUserID nil leaves
// the assignee unchanged; clearing goes through UpdateTaskAssignee.
type UpdateTaskParams struct {
	Title          string
	Description    string
	DueDate        time.Time
	Priority       domain.TaskPriority
	Status         domain.TaskStatus // empty keeps the stored status
	AssignedUserID *string
}

// CreateTask validates the due date, upserts the owner (and assignee, when
// given) by email and persists the task with a fresh version token.
func (s *TaskService) CreateTask(ctx context.Context, params CreateTaskParams) (*domain.Task, error) {
	now := s.now().UTC()

	if !params.DueDate.After(now) {
		return nil, fmt.Errorf("%w: due date must be in the future", domain.ErrInvalidOperation)
	}

	status := params.Status
	if status == "" {
		status = domain.TaskStatusOpen
	}
	if status == domain.TaskStatusOverdue {
		return nil, fmt.Errorf("%w: status Overdue is computed and cannot be set", domain.ErrInvalidOperation)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	priority := params.Priority
	if priority == "" {
		priority = domain.TaskPriorityMedium
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPriority, priority)
	}

	owner, err := s.users.UpsertByEmail(ctx, &domain.User{
		FullName:  params.Owner.FullName,
		Email:     params.Owner.Email,
		Telephone: params.Owner.Telephone,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert owner: %w", err)
	}

	assignee := owner
	if params.Assignee != nil {
		assignee, err = s.users.UpsertByEmail(ctx, &domain.User{
			FullName:  params.Assignee.FullName,
			Email:     params.Assignee.Email,
			Telephone: params.Assignee.Telephone,
		})
		if err != nil {
			return nil, fmt.Errorf("upsert assignee: %w", err)
		}
	}

	task := &domain.Task{
		Title:       params.Title,
		Description: params.Description,
		DueDate:     params.DueDate.UTC(),
		Priority:    priority,
		Status:      status,
		OwnerID:     owner.ID,
		AssigneeID:  &assignee.ID,
	}

	task, err = s.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	task.Owner = owner
	task.Assignee = assignee

	slog.Info("task created",
		"task_id", task.ID,
		"owner_id", owner.ID,
		"due_date", task.DueDate,
	)

	return task, nil
}

// GetTask retrieves a task with owner and assignee populated.
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks returns a filtered page of tasks with users populated, plus the
// total match count.
func (s *TaskService) ListTasks(ctx context.Context, filters repository.TaskListFilters) ([]*domain.Task, int, error) {
	tasks, total, err := s.tasks.List(ctx, filters, s.now().UTC())
	if err != nil {
		return nil, 0, err
	}
	if err := s.hydrate(ctx, tasks...); err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// UpdateTask applies a full update under the version token protocol.
//
// Rules: the new due date must not be in the past (strict rule, applied to
// overdue and non-overdue tasks alike); a currently overdue task may only be
// updated when its due date moves strictly into the future; clients cannot
// set Overdue themselves. After applying the input, the status is recomputed:
// an elapsed due date on a non-terminal task forces Overdue, and a task that
// leaves the overdue state falls back to Open unless the input chose a status.
func (s *TaskService) UpdateTask(
	ctx context.Context,
	taskID string,
	params UpdateTaskParams,
	expectedVersion []byte,
) (*domain.Task, error) {
	now := s.now().UTC()

	if params.Status == domain.TaskStatusOverdue {
		return nil, fmt.Errorf("%w: status Overdue is computed and cannot be set", domain.ErrInvalidOperation)
	}
	if params.Status != "" && !params.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, params.Status)
	}
	if params.Priority != "" && !params.Priority.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPriority, params.Priority)
	}
	if params.DueDate.Before(now) {
		return nil, fmt.Errorf("%w: due date must not be in the past", domain.ErrInvalidOperation)
	}

	stored, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if stored.IsOverdue(now) && !params.DueDate.After(now) {
		return nil, fmt.Errorf("%w: cannot update overdue task unless due date moves to future", domain.ErrInvalidOperation)
	}

	if params.AssignedUserID != nil {
		changed := stored.AssigneeID == nil || *stored.AssigneeID != *params.AssignedUserID
		if changed {
			if _, err := s.users.GetByID(ctx, *params.AssignedUserID); err != nil {
				return nil, err
			}
		}
		stored.AssigneeID = params.AssignedUserID
	}

	wasOverdue := stored.Status == domain.TaskStatusOverdue

	stored.Title = params.Title
	stored.Description = params.Description
	stored.DueDate = params.DueDate.UTC()
	if params.Priority != "" {
		stored.Priority = params.Priority
	}
	if params.Status != "" {
		stored.Status = params.Status
	} else if wasOverdue && stored.DueDate.After(now) {
		stored.Status = domain.TaskStatusOpen
	}
	s.recomputeOverdue(stored, now)

	return s.commit(ctx, stored, expectedVersion)
}

// UpdateTaskStatus changes only the status under the version token protocol.
// Explicit Overdue is rejected, and a currently overdue task cannot change
// status here because its due date stays in the past.
func (s *TaskService) UpdateTaskStatus(
	ctx context.Context,
	taskID string,
	newStatus domain.TaskStatus,
	expectedVersion []byte,
) (*domain.Task, error) {
	now := s.now().UTC()

	if newStatus == domain.TaskStatusOverdue {
		return nil, fmt.Errorf("%w: status Overdue is computed and cannot be set", domain.ErrInvalidOperation)
	}
	if !newStatus.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, newStatus)
	}

	stored, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if stored.IsOverdue(now) {
		return nil, fmt.Errorf("%w: cannot update overdue task unless due date moves to future", domain.ErrInvalidOperation)
	}

	stored.Status = newStatus
	s.recomputeOverdue(stored, now)

	return s.commit(ctx, stored, expectedVersion)
}

// UpdateTaskAssignee sets or clears the assignee under the version token
// protocol. A non-nil user must exist.
func (s *TaskService) UpdateTaskAssignee(
	ctx context.Context,
	taskID string,
	assignedUserID *string,
	expectedVersion []byte,
) (*domain.Task, error) {
	stored, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if assignedUserID != nil {
		if _, err := s.users.GetByID(ctx, *assignedUserID); err != nil {
			return nil, err
		}
	}

	stored.AssigneeID = assignedUserID

	return s.commit(ctx, stored, expectedVersion)
}

// DeleteTask removes a task. Deletion carries no version check; it is an
// administrative operation and last-writer-wins is acceptable.
func (s *TaskService) DeleteTask(ctx context.Context, taskID string) error {
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return err
	}
	slog.Info("task deleted", "task_id", taskID)
	return nil
}

// recomputeOverdue forces the computed Overdue status onto a non-terminal
// task whose due date has elapsed.
func (s *TaskService) recomputeOverdue(task *domain.Task, now time.Time) {
	if task.DueDate.Before(now) && !task.Status.IsTerminal() {
		task.Status = domain.TaskStatusOverdue
	}
}

// commit writes through the conditional update and rehydrates users.
func (s *TaskService) commit(ctx context.Context, task *domain.Task, expectedVersion []byte) (*domain.Task, error) {
	updated, err := s.tasks.UpdateIfVersion(ctx, task, expectedVersion)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, updated); err != nil {
		return nil, err
	}

	slog.Info("task updated",
		"task_id", updated.ID,
		"status", updated.Status,
	)

	return updated, nil
}

// hydrate populates Owner and Assignee on the given tasks with one batched
// user lookup.
func (s *TaskService) hydrate(ctx context.Context, tasks ...*domain.Task) error {
	ids := make([]string, 0, len(tasks)*2)
	for _, t := range tasks {
		ids = append(ids, t.OwnerID)
		if t.AssigneeID != nil {
			ids = append(ids, *t.AssigneeID)
		}
	}

	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load task users: %w", err)
	}

	for _, t := range tasks {
		t.Owner = users[t.OwnerID]
		if t.AssigneeID != nil {
			t.Assignee = users[*t.AssigneeID]
		} else {
			t.Assignee = nil
		}
	}
	return nil
}
