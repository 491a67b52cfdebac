package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/taskhive/taskhive/internal/domain"
)

// TaskScope selects whose tasks a listing covers.
type TaskScope string

const (
	ScopeAll      TaskScope = "any"
	ScopeOwner    TaskScope = "owner"
	ScopeAssignee TaskScope = "assignee"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// TaskListFilters holds all supported filters for task listing.
type TaskListFilters struct {
	Scope          TaskScope
	OwnerUserID    string
	AssignedUserID string
	Statuses       []domain.TaskStatus
	Priorities     []domain.TaskPriority
	OverdueOnly    bool
	ReminderSent   *bool
	Search         string // case-insensitive substring over title/description
	SortBy         string // dueDate | createdAt | priority | status | title
	SortDir        string // asc | desc
	Page           int
	PageSize       int
}

// Normalize clamps pagination and fills sort defaults.
func (f *TaskListFilters) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
	if f.SortBy == "" {
		f.SortBy = "dueDate"
	}
	if f.SortDir != "desc" {
		f.SortDir = "asc"
	}
	if f.Scope == "" {
		f.Scope = ScopeAll
	}
}

// priorityRank orders Low/Medium/High without relying on string collation.
const priorityRank = "CASE priority WHEN 'High' THEN 1 WHEN 'Medium' THEN 2 WHEN 'Low' THEN 3 END"

var sortColumns = map[string]string{
	"dueDate":   "due_date",
	"createdAt": "created_at",
	"priority":  priorityRank,
	"status":    "status",
	"title":     "title",
}

// apply adds the filter predicates to a query builder. Used for both the
// page query and the total count so the two can never drift apart.
func (f *TaskListFilters) apply(qb sq.SelectBuilder, now time.Time) sq.SelectBuilder {
	switch f.Scope {
	case ScopeOwner:
		qb = qb.Where(sq.Eq{"owner_id": f.OwnerUserID})
	case ScopeAssignee:
		qb = qb.Where(sq.Eq{"assignee_id": f.AssignedUserID})
	}

	if len(f.Statuses) > 0 {
		qb = qb.Where(sq.Eq{"status": f.Statuses})
	}
	if len(f.Priorities) > 0 {
		qb = qb.Where(sq.Eq{"priority": f.Priorities})
	}
	if f.OverdueOnly {
		qb = qb.Where(sq.Expr("due_date < ? AND status NOT IN (?, ?)",
			now, domain.TaskStatusCompleted, domain.TaskStatusCancelled))
	}
	if f.ReminderSent != nil {
		qb = qb.Where(sq.Eq{"reminder_sent": *f.ReminderSent})
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		qb = qb.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"description": pattern},
		})
	}
	return qb
}

// List retrieves tasks with filters, sorting and pagination, returning the
// page plus the total match count. Sort ties are broken by id so pages are
// deterministic for a fixed now.
func (r *TaskRepository) List(ctx context.Context, filters TaskListFilters, now time.Time) ([]*domain.Task, int, error) {
	filters.Normalize()

	sortColumn, ok := sortColumns[filters.SortBy]
	if !ok {
		sortColumn = sortColumns["dueDate"]
	}
	direction := "ASC"
	if filters.SortDir == "desc" {
		direction = "DESC"
	}

	qb := filters.apply(psql.Select(taskColumns...).From("tasks"), now).
		OrderBy(sortColumn + " " + direction).
		OrderBy("id ASC").
		Limit(uint64(filters.PageSize)).
		Offset(uint64((filters.Page - 1) * filters.PageSize))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build List query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query tasks: %w", err)
	}

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := filters.apply(psql.Select("COUNT(*)").From("tasks"), now).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	return tasks, total, nil
}
