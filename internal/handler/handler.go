// Package handler wires HTTP routes to the services and translates domain
// errors into the typed error envelope.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taskhive/taskhive/internal/handler/dto"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/repository"
	"github.com/taskhive/taskhive/internal/service"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pool        *pgxpool.Pool
	taskService *service.TaskService
	userService *service.UserService
}

// New creates a new Handler instance with all dependencies.
func New(pool *pgxpool.Pool) *Handler {
	taskRepo := repository.NewTaskRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	return &Handler{
		pool:        pool,
		taskService: service.NewTaskService(taskRepo, userRepo),
		userService: service.NewUserService(userRepo),
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Readiness. Deliberately no database check: the gate clients poll
	// only needs the HTTP server to be up.
	mux.HandleFunc("GET /health", h.handleHealth)

	// Users
	mux.HandleFunc("POST /api/v1/users", h.handleCreateUser)
	mux.HandleFunc("GET /api/v1/users", h.handleListUsers)
	mux.HandleFunc("GET /api/v1/users/{id}", h.handleGetUser)
	mux.HandleFunc("GET /api/v1/users/email/{email}", h.handleGetUserByEmail)

	// Tasks
	mux.HandleFunc("POST /api/v1/tasks", h.handleCreateTask)
	mux.HandleFunc("GET /api/v1/tasks", h.handleListTasks)
	mux.HandleFunc("GET /api/v1/tasks/{id}", h.handleGetTask)
	mux.HandleFunc("PUT /api/v1/tasks/{id}", h.handleUpdateTask)
	mux.HandleFunc("PATCH /api/v1/tasks/{id}/status", h.handleUpdateTaskStatus)
	mux.HandleFunc("PATCH /api/v1/tasks/{id}/assignee", h.handleUpdateTaskAssignee)
	mux.HandleFunc("DELETE /api/v1/tasks/{id}", h.handleDeleteTask)
}

// handleHealth reports readiness as soon as the server accepts requests.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message, middleware.GetCorrelationID(r.Context())))
}

// respondDomainError maps a service error onto the wire.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, r, status, code, message)
}

// respondValidationError writes a VALIDATION_ERROR with per-field details.
func respondValidationError(w http.ResponseWriter, r *http.Request, details []dto.FieldError) {
	respondJSON(w, http.StatusBadRequest,
		dto.NewValidationError(details, middleware.GetCorrelationID(r.Context())))
}

// extractTaskID extracts and validates the task id path parameter.
// Returns ("", false) after writing the error response when invalid.
func extractTaskID(w http.ResponseWriter, r *http.Request) (string, bool) {
	taskID := r.PathValue("id")
	if taskID == "" {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "task id is required")
		return "", false
	}
	if _, err := uuid.Parse(taskID); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "task id must be a valid UUID")
		return "", false
	}
	return taskID, true
}
