package services

import (
	"context"

	"invocation-adapter/internal/models"
)

// UserService defines the business operations on users
type UserService interface {
	// CreateUser registers a new user
	CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)

	// GetUser retrieves a user by ID
	GetUser(ctx context.Context, id string) (*models.User, error)

	// ListUsers returns up to limit users
	ListUsers(ctx context.Context, limit int) ([]*models.User, error)

	// DeleteUser removes a user
	DeleteUser(ctx context.Context, id string) error
}
