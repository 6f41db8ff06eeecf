package server

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"invocation-adapter/internal/config"
	"invocation-adapter/internal/database"
	"invocation-adapter/internal/handlers"
	"invocation-adapter/internal/middleware"
	"invocation-adapter/internal/repositories/sqlite"
	"invocation-adapter/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logrus.Logger
	UserService services.UserService
	AuthService *middleware.AuthService
	Router      *gin.Engine

	db *sql.DB
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	logger := logrus.StandardLogger()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(&database.ConnectionConfig{
		DSN:             cfg.Database.ConnectionString,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Hour,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	userService := services.NewUserService(sqlite.NewUserRepository(db, logger))
	authService := middleware.NewAuthService(&middleware.AuthConfig{
		JWTSecret:     cfg.JWT.Secret,
		TokenDuration: time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
	})

	router := handlers.NewRouter(&handlers.RouterConfig{
		UserService:    userService,
		AuthService:    authService,
		Logger:         logger,
		RateLimitRPS:   cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst: cfg.RateLimit.Burst,
		DevRoutes:      cfg.Environment != "production",
	})

	return &Container{
		Config:      cfg,
		Logger:      logger,
		UserService: userService,
		AuthService: authService,
		Router:      router,
		db:          db,
	}, nil
}

// DB returns the database handle
func (c *Container) DB() *sql.DB {
	return c.db
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		c.db = nil
	}

	return nil
}
