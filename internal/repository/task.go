package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taskhive/taskhive/internal/domain"
)

// taskColumns is the shared list of columns for task queries.
var taskColumns = []string{
	"id", "title", "description", "due_date", "priority", "status",
	"owner_id", "assignee_id", "reminder_sent", "due_notified_at",
	"created_at", "updated_at", "version",
}

// TaskRepository is the sole writer to the tasks table. Every update goes
// through the version-token conditional write; the due-scan claim is a
// single atomic statement.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// scanTask scans a single row into a Task struct.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&task.Priority,
		&task.Status,
		&task.OwnerID,
		&task.AssigneeID,
		&task.ReminderSent,
		&task.DueNotifiedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
		&task.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &task, nil
}

// scanTasks scans multiple rows into a slice of Task structs.
func scanTasks(rows pgx.Rows) ([]*domain.Task, error) {
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return tasks, nil
}

// FindByID retrieves a task by ID.
func (r *TaskRepository) FindByID(ctx context.Context, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build FindByID query: %w", err)
	}

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

// Create inserts a new task with a fresh version token.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	task.Version = domain.NewVersion()

	query, args, err := psql.
		Insert("tasks").
		Columns(
			"title", "description", "due_date", "priority", "status",
			"owner_id", "assignee_id", "reminder_sent", "version",
		).
		Values(
			task.Title,
			task.Description,
			task.DueDate,
			task.Priority,
			task.Status,
			task.OwnerID,
			task.AssigneeID,
			task.ReminderSent,
			task.Version,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	return task, nil
}

// UpdateIfVersion writes all mutable fields only if the stored version token
// equals expectedVersion, rotating the token and refreshing updated_at in the
// same statement. There is no read-then-write window: the version predicate
// is part of the UPDATE itself. On mismatch it returns ErrConcurrencyConflict
// without retrying; a vanished row surfaces as ErrTaskNotFound.
func (r *TaskRepository) UpdateIfVersion(
	ctx context.Context,
	task *domain.Task,
	expectedVersion []byte,
) (*domain.Task, error) {
	newVersion := domain.NewVersion()

	query, args, err := psql.
		Update("tasks").
		Set("title", task.Title).
		Set("description", task.Description).
		Set("due_date", task.DueDate).
		Set("priority", task.Priority).
		Set("status", task.Status).
		Set("assignee_id", task.AssigneeID).
		Set("reminder_sent", task.ReminderSent).
		Set("updated_at", sq.Expr("NOW()")).
		Set("version", newVersion).
		Where(sq.Eq{
			"id":      task.ID,
			"version": expectedVersion,
		}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build UpdateIfVersion query for task %s: %w", task.ID, err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&task.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyMissedUpdate(ctx, task.ID)
		}
		return nil, fmt.Errorf("update task: %w", err)
	}

	task.Version = newVersion
	return task, nil
}

// classifyMissedUpdate decides whether a zero-row conditional update was a
// version mismatch or a deleted row.
func (r *TaskRepository) classifyMissedUpdate(ctx context.Context, taskID string) error {
	query, args, err := psql.
		Select("1").
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build existence query for task %s: %w", taskID, err)
	}

	var one int
	err = r.pool.QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrTaskNotFound
	}
	if err != nil {
		return fmt.Errorf("check task existence: %w", err)
	}
	return domain.ErrConcurrencyConflict
}

// Delete removes a task without a version check; deletion is absolute and
// last-writer-wins is acceptable.
func (r *TaskRepository) Delete(ctx context.Context, taskID string) error {
	query, args, err := psql.
		Delete("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Delete query for task %s: %w", taskID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// ClaimDue atomically stamps due_notified_at on up to batchSize tasks whose
// due date has elapsed and which were never claimed before, oldest first.
// The IS NULL predicate is evaluated inside the same statement as the write
// and the subquery locks candidate rows with SKIP LOCKED, so concurrent
// scanner instances can never claim the same row twice.
func (r *TaskRepository) ClaimDue(ctx context.Context, now time.Time, batchSize int) (int64, error) {
	query, args, err := psql.
		Update("tasks").
		Set("due_notified_at", now).
		Where(sq.Expr(
			`id IN (
				SELECT id FROM tasks
				WHERE due_date < ? AND due_notified_at IS NULL AND status NOT IN (?, ?)
				ORDER BY due_date ASC
				LIMIT ?
				FOR UPDATE SKIP LOCKED
			)`,
			now, domain.TaskStatusCompleted, domain.TaskStatusCancelled, batchSize,
		)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build ClaimDue query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("claim due tasks: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DueTask is the projection the scanner publishes for a claimed row.
type DueTask struct {
	ID      string
	Title   string
	DueDate time.Time
}

// SelectClaimedAt returns the rows stamped with exactly the given claim
// marker, letting the scanner emit one message per newly claimed row without
// holding a cursor across the claim.
func (r *TaskRepository) SelectClaimedAt(ctx context.Context, claimedAt time.Time) ([]DueTask, error) {
	query, args, err := psql.
		Select("id", "title", "due_date").
		From("tasks").
		Where(sq.Eq{"due_notified_at": claimedAt}).
		OrderBy("due_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build SelectClaimedAt query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query claimed tasks: %w", err)
	}
	defer rows.Close()

	var due []DueTask
	for rows.Next() {
		var d DueTask
		if err := rows.Scan(&d.ID, &d.Title, &d.DueDate); err != nil {
			return nil, fmt.Errorf("scan claimed task: %w", err)
		}
		due = append(due, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return due, nil
}
