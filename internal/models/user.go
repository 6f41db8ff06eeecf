package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// User represents an account served by the sample application
type User struct {
	ID        string          `json:"id" db:"id" validate:"required,uuid"`
	Username  string          `json:"username" db:"username" validate:"required,min=3,max=64"`
	Email     string          `json:"email" db:"email" validate:"required,email"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// CreateUserRequest is the payload accepted when registering a user.
// Both JSON and form bodies bind to it.
type CreateUserRequest struct {
	Username string `json:"username" form:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Balance  string `json:"balance" form:"balance" binding:"omitempty,numeric"`
}

// NewUser creates a new user with generated ID and timestamps
func NewUser(username, email string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New().String(),
		Username:  strings.TrimSpace(username),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewUserFromRequest builds a user from a validated request
func NewUserFromRequest(req *CreateUserRequest) (*User, error) {
	user := NewUser(req.Username, req.Email)
	if req.Balance != "" {
		balance, err := decimal.NewFromString(req.Balance)
		if err != nil {
			return nil, fmt.Errorf("invalid balance: %w", err)
		}
		user.Balance = balance
	}
	return user, nil
}

// Validate validates the user data
func (u *User) Validate() error {
	if err := validate.Struct(u); err != nil {
		return fmt.Errorf("user validation failed: %w", err)
	}
	if u.Balance.IsNegative() {
		return fmt.Errorf("user validation failed: balance must not be negative")
	}
	return nil
}
