package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"invocation-adapter/internal/middleware"
	"invocation-adapter/internal/services"
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	UserService    services.UserService
	AuthService    *middleware.AuthService
	Logger         *logrus.Logger
	RateLimitRPS   float64
	RateLimitBurst int
	// DevRoutes exposes token issuing without credentials
	DevRoutes bool
}

// NewRouter builds the gin engine with middleware and routes
func NewRouter(config *RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	SetupMiddleware(router, config)
	SetupRoutes(router, config)
	return router
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine, config *RouterConfig) {
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())
	if config.RateLimitRPS > 0 {
		router.Use(middleware.RateLimiter(config.RateLimitRPS, config.RateLimitBurst))
	}
	router.Use(middleware.StructuredLogger(config.Logger))
	router.Use(middleware.ErrorHandler())
}

// SetupRoutes configures all routes
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	userHandler := NewUserHandler(config.UserService)
	authHandler := NewAuthHandler(config.AuthService)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "invocation-adapter",
		})
	})

	users := router.Group("/users")
	{
		users.GET("/", userHandler.ListUsers)
		users.POST("/", userHandler.CreateUser)
		users.GET("/:id", userHandler.GetUser)
		users.DELETE("/:id", middleware.Authentication(config.AuthService), userHandler.DeleteUser)
	}

	router.GET("/u/:id", userHandler.RedirectToUser)

	if config.DevRoutes {
		router.POST("/auth/token", authHandler.IssueToken)
	}
}
