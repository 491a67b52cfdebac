package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/handler/dto"
	"github.com/taskhive/taskhive/internal/repository"
	"github.com/taskhive/taskhive/internal/service"
)

// handleCreateTask creates a task, upserting the embedded owner and
// assignee by email.
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if details := req.Validate(); len(details) > 0 {
		respondValidationError(w, r, details)
		return
	}

	params := service.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDateUTC,
		Priority:    domain.TaskPriority(req.Priority),
		Status:      domain.TaskStatus(req.Status),
		Owner: service.UserInput{
			FullName:  req.Owner.FullName,
			Email:     req.Owner.Email,
			Telephone: req.Owner.Telephone,
		},
	}
	if req.Assignee != nil {
		params.Assignee = &service.UserInput{
			FullName:  req.Assignee.FullName,
			Email:     req.Assignee.Email,
			Telephone: req.Assignee.Telephone,
		}
	}

	task, err := h.taskService.CreateTask(ctx, params)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToTaskResponse(task, time.Now().UTC()))
}

// handleGetTask retrieves one task with owner and assignee populated.
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), taskID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task, time.Now().UTC()))
}

// handleUpdateTask applies a full update under the If-Match version token.
func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	expectedVersion, ok := extractVersion(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if details := req.Validate(); len(details) > 0 {
		respondValidationError(w, r, details)
		return
	}
	if !validOptionalUserID(w, r, req.AssignedUserID, "assignedUserId") {
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), taskID, service.UpdateTaskParams{
		Title:          req.Title,
		Description:    req.Description,
		DueDate:        req.DueDateUTC,
		Priority:       domain.TaskPriority(req.Priority),
		Status:         domain.TaskStatus(req.Status),
		AssignedUserID: req.AssignedUserID,
	}, expectedVersion)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task, time.Now().UTC()))
}

// handleUpdateTaskStatus changes only the status under the If-Match token.
func (h *Handler) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	expectedVersion, ok := extractVersion(w, r)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.Status == "" {
		respondValidationError(w, r, []dto.FieldError{
			{Field: "status", Message: "status is required"},
		})
		return
	}

	task, err := h.taskService.UpdateTaskStatus(r.Context(), taskID, domain.TaskStatus(req.Status), expectedVersion)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task, time.Now().UTC()))
}

// handleUpdateTaskAssignee sets or clears the assignee under the If-Match
// token.
func (h *Handler) handleUpdateTaskAssignee(w http.ResponseWriter, r *http.Request) {
	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	expectedVersion, ok := extractVersion(w, r)
	if !ok {
		return
	}

	var req dto.UpdateAssigneeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if !validOptionalUserID(w, r, req.AssignedUserID, "assignedUserId") {
		return
	}

	task, err := h.taskService.UpdateTaskAssignee(r.Context(), taskID, req.AssignedUserID, expectedVersion)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task, time.Now().UTC()))
}

// handleDeleteTask removes a task. No version check; delete is absolute.
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), taskID); err != nil {
		respondDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleListTasks returns a filtered, sorted, paginated task page.
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	for _, p := range []string{"ownerUserId", "assignedUserId"} {
		if v := query.Get(p); v != "" {
			if _, err := uuid.Parse(v); err != nil {
				respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", p+" must be a valid UUID")
				return
			}
		}
	}

	filters := repository.TaskListFilters{
		Scope:          repository.TaskScope(query.Get("scope")),
		OwnerUserID:    query.Get("ownerUserId"),
		AssignedUserID: query.Get("assignedUserId"),
		OverdueOnly:    query.Get("overdueOnly") == "true",
		Search:         query.Get("search"),
		SortBy:         query.Get("sortBy"),
		SortDir:        query.Get("sortDir"),
		Page:           parseIntParam(query.Get("page"), 1),
		PageSize:       parseIntParam(query.Get("pageSize"), 0),
	}

	for _, s := range splitAndTrim(query.Get("status"), ",") {
		filters.Statuses = append(filters.Statuses, domain.TaskStatus(s))
	}
	for _, p := range splitAndTrim(query.Get("priority"), ",") {
		filters.Priorities = append(filters.Priorities, domain.TaskPriority(p))
	}
	if v := query.Get("reminderSent"); v != "" {
		sent := v == "true"
		filters.ReminderSent = &sent
	}

	tasks, total, err := h.taskService.ListTasks(r.Context(), filters)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	filters.Normalize()
	now := time.Now().UTC()
	items := make([]dto.TaskResponse, len(tasks))
	for i, task := range tasks {
		items[i] = dto.ToTaskResponse(task, now)
	}

	respondJSON(w, http.StatusOK, dto.TaskPageResponse{
		Items:      items,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalItems: total,
		TotalPages: dto.TotalPages(total, filters.PageSize),
	})
}

// validOptionalUserID checks a nilable user id reference; like path ids, a
// malformed value is a 400 rather than a database error. Returns false after
// writing the error response.
func validOptionalUserID(w http.ResponseWriter, r *http.Request, id *string, field string) bool {
	if id == nil {
		return true
	}
	if _, err := uuid.Parse(*id); err != nil {
		respondValidationError(w, r, []dto.FieldError{
			{Field: field, Message: field + " must be a valid UUID"},
		})
		return false
	}
	return true
}

// extractVersion parses the If-Match header into a version token. Missing or
// malformed tokens fail the request with 400 before the service is called.
func extractVersion(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	version, err := domain.DecodeVersion(r.Header.Get("If-Match"))
	if err != nil {
		respondDomainError(w, r, err)
		return nil, false
	}
	return version, true
}

// parseIntParam parses a positive integer query parameter with a fallback.
func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// splitAndTrim splits a string by delimiter and trims whitespace.
func splitAndTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
