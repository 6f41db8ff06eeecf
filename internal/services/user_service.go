package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"invocation-adapter/internal/models"
	"invocation-adapter/internal/repositories"
)

// userService implements the UserService interface
type userService struct {
	userRepo  repositories.UserRepository
	validator *validator.Validate
}

// NewUserService creates a new user service instance
func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{
		userRepo:  userRepo,
		validator: validator.New(),
	}
}

// CreateUser creates a new user
func (s *userService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if req == nil {
		return nil, fmt.Errorf("create user request cannot be nil")
	}

	if err := s.validator.Struct(struct {
		Username string `validate:"required,min=3,max=64"`
		Email    string `validate:"required,email"`
	}{req.Username, req.Email}); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := models.NewUserFromRequest(req)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user by ID
func (s *userService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	return s.userRepo.GetByID(ctx, id)
}

// ListUsers returns the newest users
func (s *userService) ListUsers(ctx context.Context, limit int) ([]*models.User, error) {
	return s.userRepo.List(ctx, limit)
}

// DeleteUser deletes a user by ID
func (s *userService) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("user ID is required")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
