package repositories

import (
	"context"

	"invocation-adapter/internal/models"
)

// UserRepository defines persistence operations for users
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by its ID
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// List retrieves users ordered by creation time, newest first
	List(ctx context.Context, limit int) ([]*models.User, error)

	// Delete deletes a user by its ID
	Delete(ctx context.Context, id string) error

	// Count returns the total number of users
	Count(ctx context.Context) (int64, error)
}
