package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"invocation-adapter/internal/models"
	"invocation-adapter/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// UserRepository implements repositories.UserRepository for SQLite
type UserRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewUserRepository creates a new SQLite user repository
func NewUserRepository(db *sql.DB, logger *logrus.Logger) repositories.UserRepository {
	if logger == nil {
		logger = logrus.New()
	}
	return &UserRepository{db: db, logger: logger}
}

const userColumns = `id, username, email, balance, created_at, updated_at`

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return repositories.ValidationError("user", user.ID, err)
	}

	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.exec(ctx, "create", query,
		user.ID,
		user.Username,
		user.Email,
		user.Balance.String(),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return repositories.DuplicateError("user", "username", user.Username)
		}
		return repositories.NewRepositoryError("create", "user", user.ID, err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repositories.NewRepositoryError("get_by_id", "user", id, repositories.ErrInvalidID)
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return r.scanOne(row, "get_by_id", id)
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return r.scanOne(row, "get_by_username", username)
}

// List retrieves users ordered by creation time
func (r *UserRepository) List(ctx context.Context, limit int) ([]*models.User, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, username ASC LIMIT ?`, limit)
	if err != nil {
		return nil, repositories.NewRepositoryError("list", "user", "", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, repositories.NewRepositoryError("list", "user", "", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list", "user", "", err)
	}

	return users, nil
}

// Delete deletes a user by ID
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.exec(ctx, "delete", `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return repositories.NewRepositoryError("delete", "user", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return repositories.NewRepositoryError("delete", "user", id, err)
	}
	if affected == 0 {
		return repositories.NotFoundError("user", id)
	}

	return nil
}

// Count returns the number of stored users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, repositories.NewRepositoryError("count", "user", "", err)
	}
	return count, nil
}

func (r *UserRepository) exec(ctx context.Context, op, query string, args ...interface{}) (sql.Result, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"operation": op,
			"table":     "users",
			"error":     err.Error(),
		}).Error("Database exec failed")
	}
	return result, err
}

func (r *UserRepository) scanOne(row *sql.Row, op, key string) (*models.User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NotFoundError("user", key)
		}
		return nil, repositories.NewRepositoryError(op, "user", key, err)
	}
	return user, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(s scanner) (*models.User, error) {
	user := &models.User{}
	var balance string
	if err := s.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&balance,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, err
	}
	user.Balance = parsed

	return user, nil
}
