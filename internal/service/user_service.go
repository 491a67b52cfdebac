package service

import (
	"context"
	"log/slog"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/repository"
)

// UserService handles explicit user management. Users referenced by tasks
// are never deleted; there is no delete operation at all.
type UserService struct {
	users *repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users *repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// CreateUser registers a user with a normalized email.
func (s *UserService) CreateUser(ctx context.Context, input UserInput) (*domain.User, error) {
	user, err := s.users.Create(ctx, &domain.User{
		FullName:  input.FullName,
		Email:     domain.NormalizeEmail(input.Email),
		Telephone: input.Telephone,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user created", "user_id", user.ID)
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// GetUserByEmail retrieves a user by email, normalizing first.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.GetByEmail(ctx, email)
}

// ListUsers returns a page of users matching an optional search term.
func (s *UserService) ListUsers(ctx context.Context, search string, page, pageSize int) ([]*domain.User, int, error) {
	return s.users.List(ctx, search, page, pageSize)
}
