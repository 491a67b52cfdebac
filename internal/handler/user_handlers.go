package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive/internal/handler/dto"
	"github.com/taskhive/taskhive/internal/service"
)

// handleCreateUser registers a user explicitly. Duplicate emails fail; the
// upsert path is only for embedded references on task creation.
func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if details := dto.ValidateUser(req); len(details) > 0 {
		respondValidationError(w, r, details)
		return
	}

	user, err := h.userService.CreateUser(r.Context(), service.UserInput{
		FullName:  req.FullName,
		Email:     req.Email,
		Telephone: req.Telephone,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// handleGetUser retrieves a user by id.
func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if _, err := uuid.Parse(userID); err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "user id must be a valid UUID")
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// handleGetUserByEmail retrieves a user by email. The lookup normalizes the
// address the same way the uniqueness invariant does.
func (h *Handler) handleGetUserByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	if email == "" {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "email is required")
		return
	}

	user, err := h.userService.GetUserByEmail(r.Context(), email)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// handleListUsers returns a paginated user page with optional search.
func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := parseIntParam(query.Get("page"), 1)
	pageSize := parseIntParam(query.Get("pageSize"), 20)
	if pageSize > 100 {
		pageSize = 100
	}

	users, total, err := h.userService.ListUsers(r.Context(), query.Get("search"), page, pageSize)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	items := make([]dto.UserResponse, len(users))
	for i, user := range users {
		items[i] = *dto.ToUserResponse(user)
	}

	respondJSON(w, http.StatusOK, dto.UserPageResponse{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: dto.TotalPages(total, pageSize),
	})
}
